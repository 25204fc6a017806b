package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listUpdatesCmd = &cobra.Command{
	Use:   "list-updates",
	Short: "List installed games with a newer version available",
	Run:   runListUpdates,
}

func init() {
	RootCmd.AddCommand(listUpdatesCmd)
}

func runListUpdates(cmd *cobra.Command, args []string) {
	o := newOrchestrator()

	candidates, err := o.ListUpdates()
	if err != nil {
		fail(err)
	}
	if len(candidates) == 0 {
		fmt.Println("everything up to date")
		return
	}
	for _, c := range candidates {
		fmt.Printf("%s: %s -> %s\n", c.Slug, c.CurrentVersion, c.LatestVersion)
	}
}
