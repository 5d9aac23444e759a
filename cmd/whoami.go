package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			user, err := app.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\n", user.Username)
			fmt.Fprintf(out, "Email:    %s\n", user.Email)
			if user.FullName != "" {
				fmt.Fprintf(out, "Name:     %s\n", user.FullName)
			}
			fmt.Fprintf(out, "Role:     %s\n", user.Role)
			if exp, ok := app.Tokens.ExpiresAt(); ok {
				fmt.Fprintf(out, "Session expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
