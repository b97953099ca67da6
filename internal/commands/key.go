package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/leety/internal/chat"
)

// errKeyRejected is returned when the API refuses a candidate key
var errKeyRejected = errors.New(chat.MsgInvalidKey)

// NewKeyCmd creates the key command group
func NewKeyCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
		Long: `Store, check and remove the Gemini API key. The key lives in
~/.leety/credentials.json or the OS keyring (credentials.backend).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Verify and store an API key",
		Long:  `Verify the key against the Gemini API and store it. When no key is given it is read from the terminal without echo.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyArg(cmd, args)
			if err != nil {
				return err
			}
			return runKeySet(cmd, deps, key)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify [key]",
		Short: "Check an API key (default: the stored one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) > 0 {
				key = args[0]
			}
			return runKeyVerify(cmd, deps, key)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored API key, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyShow(cmd, deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyClear(cmd, deps)
		},
	})

	return cmd
}

// keyArg returns the key argument, prompting for it when absent
func keyArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin && isStdinTTY() {
		fmt.Fprint(cmd.ErrOrStderr(), "Gemini API key: ")
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return line, nil
}

func runKeySet(cmd *cobra.Command, deps *Dependencies, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New(chat.MsgEmptyKey)
	}

	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	client, stop := s.client(ctx)
	defer stop()

	spin := newSpinner(cmd.ErrOrStderr(), "Verifying API key")
	spin.start()
	ok, err := client.VerifyAPIKey(ctx, key)
	if err != nil {
		spin.stopWithError()
		return err
	}
	if !ok {
		spin.stopWithError()
		return errKeyRejected
	}
	spin.stopWithSuccess("API key verified")

	if err := client.SaveAPIKey(ctx, key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
	return nil
}

func runKeyVerify(cmd *cobra.Command, deps *Dependencies, key string) error {
	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	if key == "" {
		stored, ok, err := s.store.Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no API key stored; run 'leety key set'")
		}
		key = stored
	}

	// The generator is called directly so the failure kind is reported
	if err := s.gen.VerifyKey(ctx, key); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API key is valid")
	return nil
}

func runKeyShow(cmd *cobra.Command, deps *Dependencies) error {
	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	client, stop := s.client(ctx)
	defer stop()

	key, err := client.GetAPIKey(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No API key stored")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), maskKey(key))
	return nil
}

func runKeyClear(cmd *cobra.Command, deps *Dependencies) error {
	s, err := deps.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.Clear(commandContext(cmd)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
	return nil
}
