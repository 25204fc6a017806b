package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <slug>",
	Short: "Remove an installed game's files and state record",
	Args:  cobra.ExactArgs(1),
	Run:   runUninstall,
}

func init() {
	RootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) {
	slug := args[0]
	o := newOrchestrator()

	if err := o.Uninstall(slug); err != nil {
		fail(err)
	}
	fmt.Printf("uninstalled %s\n", slug)
}
