package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/config"
	"github.com/diogo/leety/internal/tui"
)

// configPath returns the file named by --config, or the default one
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.GetConfigPath()
}

// NewConfigCmd creates the config command group
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change leety settings. Values come from the config file,
then LEETY_* environment variables (LEETY_API_TIMEOUT, LEETY_SCRAPER_HEADLESS, ...).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := deps.LoadConfig(configFlag); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			settings, err := config.Settings(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, dim("# "+path))
			for _, s := range settings {
				fmt.Fprintf(w, "%s = %v\n", s.Key, s.Value)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: "Change one setting. Known keys:\n  " + strings.Join(config.Keys(), "\n  ") +
			"\n\ntui_theme is one of: " + strings.Join(tui.ThemeNames(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", strings.ToLower(args[0]), args[1])
			return nil
		},
	})

	return cmd
}
