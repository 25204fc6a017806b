package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carnivalhq/carnival/carnivalerrors"
	"github.com/carnivalhq/carnival/pipeline"
	"github.com/carnivalhq/carnival/product"
)

var installFlags struct {
	version            string
	path               string
	osName             string
	maxDownloadWorkers int
	maxMemoryUsage     int64
	skipVerify         bool
}

var installCmd = &cobra.Command{
	Use:   "install <slug>",
	Short: "Install a game from the library",
	Args:  cobra.ExactArgs(1),
	Run:   runInstall,
}

func init() {
	addTransferFlags(installCmd, &installFlags.version, &installFlags.path, &installFlags.osName,
		&installFlags.maxDownloadWorkers, &installFlags.maxMemoryUsage, &installFlags.skipVerify)
	RootCmd.AddCommand(installCmd)
}

func addTransferFlags(cmd *cobra.Command, version, path, osName *string, maxWorkers *int, maxMem *int64, skipVerify *bool) {
	cmd.Flags().StringVar(version, "version", "", "Version to install (default: latest)")
	cmd.Flags().StringVar(path, "path", "", "Install directory")
	cmd.Flags().StringVar(osName, "os", "lin", "Target OS: win, lin, or mac")
	cmd.Flags().IntVar(maxWorkers, "max-download-workers", 0, "Max concurrent chunk fetches (default: min(2*CPUs, 16))")
	cmd.Flags().Int64Var(maxMem, "max-memory-usage", 0, "Max resident chunk bytes (default: 1 GiB)")
	cmd.Flags().BoolVar(skipVerify, "skip-verify", false, "Skip per-chunk SHA-256 verification")
}

func transferOptions(maxWorkers int, maxMem int64, skipVerify bool) *pipeline.Options {
	return &pipeline.Options{
		MaxDownloadWorkers: maxWorkers,
		MaxMemoryUsage:     maxMem,
		SkipVerify:         skipVerify,
	}
}

func runInstall(cmd *cobra.Command, args []string) {
	slug := args[0]
	o := newOrchestrator()

	path := installFlags.path
	if path == "" {
		path = o.Config.Install.DefaultBasePath + "/" + slug
	}

	result, err := o.Install(context.Background(), slug, product.OS(installFlags.osName), installFlags.version, path,
		transferOptions(installFlags.maxDownloadWorkers, installFlags.maxMemoryUsage, installFlags.skipVerify))
	if err != nil {
		if carnivalerrors.Is(err, carnivalerrors.ChunkCorrupted) {
			failf("some chunks corrupted — install incomplete (%s)", err)
		}
		failf("i/o error — install aborted: %s", err)
	}

	fmt.Printf("installed %s: %d chunks written\n", slug, result.ChunksWritten)
}
