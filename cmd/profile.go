package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd(newApp appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit the user profile",
	}
	cmd.AddCommand(newProfileUpdateCmd(newApp))
	return cmd
}

func newProfileUpdateCmd(newApp appFactory) *cobra.Command {
	var username string
	var fullName string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update username and full name",
		Long: `Submits a profile change and refetches the profile, so the values shown
afterwards are the backend's, not the request's.`,
		Example: `  palma profile update --username planter --full-name "Aiman P."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" && fullName == "" {
				return fmt.Errorf("nothing to update: set --username and/or --full-name")
			}

			app, err := newApp()
			if err != nil {
				return err
			}

			// Missing fields keep their current values.
			current := app.Tokens.User()
			if current == nil {
				current, _ = app.Auth.CurrentUser(cmd.Context())
			}
			if current != nil {
				if username == "" {
					username = current.Username
				}
				if fullName == "" {
					fullName = current.FullName
				}
			}

			user, err := app.Auth.UpdateProfile(cmd.Context(), username, fullName)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s", user.Username)
			if user.FullName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", user.FullName)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&fullName, "full-name", "", "New full name")

	return cmd
}
