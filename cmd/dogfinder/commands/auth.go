package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginName  string
	loginEmail string
)

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "The name to log in with.")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "The email to log in with.")
	loginCmd.MarkFlagRequired("name")
	loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login --name <name> --email <email>",
	Short: "Starts a session with the catalog service and remembers it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		err := a.client.Login(cmd.Context(), loginName, loginEmail)
		if err != nil {
			return err
		}
		err = a.session.Save(cmd.Context(), a.client.Cookies())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "logged in as %s\n", loginName)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Ends the session and forgets it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		err := a.client.Logout(cmd.Context())
		if err != nil {
			return err
		}
		err = a.session.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged out")
		return nil
	},
}
