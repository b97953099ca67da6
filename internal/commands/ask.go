package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/leety/internal/relay"
	"github.com/diogo/leety/internal/render"
)

// errReply marks a chat turn whose reply was an error message
var errReply = errors.New("chat turn failed")

// NewAskCmd creates the ask command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	var htmlOut, rawOut bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question about the open problem",
		Long: `Run a single chat turn without the panel. The question is read from
the argument, or from stdin when no argument is given.

The answer is rendered as markdown on a terminal and printed raw when
stdout is redirected. --html prints the sanitized HTML the panel uses
for transcripts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var question string
			if len(args) > 0 {
				question = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				question = string(data)
			}
			return runAsk(cmd, deps, question, askOutput{html: htmlOut, raw: rawOut || !isStdoutTTY()})
		},
	}

	cmd.Flags().BoolVar(&htmlOut, "html", false, "Print the answer as sanitized HTML")
	cmd.Flags().BoolVarP(&rawOut, "raw", "r", false, "Print the raw markdown answer")

	return cmd
}

type askOutput struct {
	html bool
	raw  bool
}

func runAsk(cmd *cobra.Command, deps *Dependencies, question string, out askOutput) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	stderr := cmd.ErrOrStderr()
	quiet := out.raw || out.html

	var spin *spinner
	if !quiet {
		spin = newSpinner(stderr, "Connecting to the browser")
		spin.start()
	}
	browser, err := s.connect(ctx)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("failed to connect to the browser: %w", err)
	}
	defer browser.Close()
	if spin != nil {
		spin.stopWithSuccess("Connected")
	}

	bus := s.newBus()
	stop := s.serve(ctx, bus, browser)
	defer stop()
	client := relay.NewClient(bus)

	if !quiet {
		spin = newSpinner(stderr, "Asking Gemini")
		spin.start()
	}
	resp, err := client.Chat(ctx, question)
	if spin != nil {
		spin.stopWithError()
	}
	if err != nil {
		return err
	}

	if resp.Error {
		if quiet {
			fmt.Fprintln(stderr, resp.Output)
		} else {
			printErrorReply(stderr, resp.Output, getTerminalWidth())
		}
		return errReply
	}

	w := cmd.OutOrStdout()

	switch {
	case out.html:
		html, err := render.HTML(resp.Output)
		if err != nil {
			return fmt.Errorf("failed to render html: %w", err)
		}
		fmt.Fprintln(w, html)
	case out.raw:
		fmt.Fprintln(w, resp.Output)
	default:
		printAnswer(w, resp.Output, render.OptionsFromConfig(s.cfg.Markdown), getTerminalWidth())
	}
	return nil
}

// exitCode maps a command error to the process status
func exitCode(err error) int {
	if errors.Is(err, errReply) {
		return 2
	}
	return 1
}
