package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PlashSpeed-Aiman/palma-cli/internal/auth"
)

func newRegisterCmd(newApp appFactory) *cobra.Command {
	var username string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Registers a new account with the backend.

Input is validated locally before anything is sent: the email must be
well-formed and the password must be at least 8 characters and reasonably
strong (uppercase letters, numbers, special characters).`,
		Example: `  palma register --username planter --email planter@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			pw := password
			confirm := password
			if pw == "" {
				if pw, err = promptLine(cmd, "Password: "); err != nil {
					return err
				}
				if confirm, err = promptLine(cmd, "Confirm password: "); err != nil {
					return err
				}
			}

			if err := app.Auth.Register(cmd.Context(), username, email, pw, confirm); err != nil {
				if label := auth.StrengthLabel(auth.PasswordStrength(pw)); label != "" {
					return fmt.Errorf("%w (password strength: %s)", err, label)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. You can now log in with `palma login`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
