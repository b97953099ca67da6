package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/history"
	"github.com/diogo/leety/internal/tui"
)

// NewTranscriptsCmd creates the transcripts command
func NewTranscriptsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts",
		Short: "List conversations saved with /export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig(configFlag)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store := history.NewStore(cfg.Transcript.Dir)
			entries, err := store.List()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(w, "No transcripts in %s\n", store.Dir())
				return nil
			}

			nameStyle := lipgloss.NewStyle().Foreground(tui.CurrentTheme().Primary)
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s  %s\n",
					nameStyle.Render(truncate(e.Name, 60)),
					dim(string(e.Format)),
					dim(history.FormatRelativeTime(e.ModTime)))
			}
			return nil
		},
	}
}
