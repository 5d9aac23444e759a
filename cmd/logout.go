package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session token",
		Long: `Notifies the backend and clears the bearer token from both the durable
token file and the in-process slot. The local session is cleared even when
the backend cannot be reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
