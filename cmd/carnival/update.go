package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carnivalhq/carnival/carnivalerrors"
)

var updateFlags struct {
	version            string
	maxDownloadWorkers int
	maxMemoryUsage     int64
	skipVerify         bool
}

var updateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update an installed game to a newer (or specific) version",
	Args:  cobra.ExactArgs(1),
	Run:   runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateFlags.version, "version", "", "Version to update to (default: latest)")
	updateCmd.Flags().IntVar(&updateFlags.maxDownloadWorkers, "max-download-workers", 0, "Max concurrent chunk fetches")
	updateCmd.Flags().Int64Var(&updateFlags.maxMemoryUsage, "max-memory-usage", 0, "Max resident chunk bytes")
	updateCmd.Flags().BoolVar(&updateFlags.skipVerify, "skip-verify", false, "Skip per-chunk SHA-256 verification")
	RootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	slug := args[0]
	o := newOrchestrator()

	result, err := o.Update(context.Background(), slug, updateFlags.version,
		transferOptions(updateFlags.maxDownloadWorkers, updateFlags.maxMemoryUsage, updateFlags.skipVerify))
	if err != nil {
		if carnivalerrors.Is(err, carnivalerrors.ChunkCorrupted) {
			failf("some chunks corrupted — update incomplete (%s)", err)
		}
		failf("i/o error — update aborted: %s", err)
	}

	fmt.Printf("updated %s: %d chunks written\n", slug, result.ChunksWritten)
}
