package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carnivalhq/carnival/product"
)

var infoFlags struct {
	version string
	osName  string
}

var infoCmd = &cobra.Command{
	Use:   "info <slug>",
	Short: "Print a dry-run summary of what installing a game would transfer",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoFlags.version, "version", "", "Version to describe (default: latest)")
	infoCmd.Flags().StringVar(&infoFlags.osName, "os", "lin", "Target OS: win, lin, or mac")
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	slug := args[0]
	o := newOrchestrator()

	summary, err := o.Info(context.Background(), slug, product.OS(infoFlags.osName), infoFlags.version)
	if err != nil {
		fail(err)
	}
	fmt.Println(summary)
}
