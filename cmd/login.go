package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(newApp appFactory) *cobra.Command {
	var password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login <email-or-username>",
		Short: "Log in to the detection backend",
		Long: `Authenticates against the backend and stores the issued bearer token.

With --remember the token is written to the durable token file and survives
across invocations; without it the token lives only for this process.`,
		Example: `  palma login farmer@example.com --remember`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			pw := password
			if pw == "" {
				pw = os.Getenv("PALMA_PASSWORD")
			}
			if pw == "" {
				pw, err = promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			user, err := app.Auth.Login(cmd.Context(), args[0], pw, remember)
			if err != nil {
				return err
			}

			if user != nil && user.Username != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (falls back to PALMA_PASSWORD, then a prompt)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Persist the session token across restarts")

	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
