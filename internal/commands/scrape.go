package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/relay"
)

// scrapeResult is the JSON printed by the scrape command
type scrapeResult struct {
	Page    relay.Sender          `json:"page"`
	Problem models.ProblemContext `json:"problem"`
}

// NewScrapeCmd creates the scrape command
func NewScrapeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Print the open problem as JSON",
		Long: `Read the title, description and current code from the active LeetCode
problem page, the same context a chat turn sends to Gemini.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, deps)
		},
	}
}

func runScrape(cmd *cobra.Command, deps *Dependencies) error {
	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	browser, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to the browser: %w", err)
	}
	defer browser.Close()

	sender, problem, err := browser.Problem(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(scrapeResult{Page: sender, Problem: problem}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode problem: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
