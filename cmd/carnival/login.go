package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the storefront account service",
	Run:   runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached storefront session",
	Run:   runLogout,
}

func init() {
	RootCmd.AddCommand(loginCmd)
	RootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	fmt.Println("account login is not handled by this client; use the storefront website to authenticate")
}

func runLogout(cmd *cobra.Command, args []string) {
	fmt.Println("no local session to clear; this client does not hold storefront credentials")
}
