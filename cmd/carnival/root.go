// Package cmd implements the carnival CLI: a thin cobra wrapper around
// the orchestrator package.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carnivalhq/carnival/carnivalconfig"
	"github.com/carnivalhq/carnival/carnivallog"
	"github.com/carnivalhq/carnival/orchestrator"
)

// RootCmd is the base command when carnival is called without subcommands.
var RootCmd = &cobra.Command{
	Use:   "carnival",
	Short: "Install and update games from the carnival CDN",
	Long:  `carnival is a command-line client for installing, updating, and verifying games distributed over the carnival content-delivery network.`,
}

var rootFlags struct {
	verbose bool
}

// Execute runs the root command. Called once from main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose logging")
}

// newOrchestrator resolves the config directory and wires an orchestrator.Orchestrator,
// exiting the process on failure (matching the teacher's fail/failf convention).
func newOrchestrator() *orchestrator.Orchestrator {
	if rootFlags.verbose {
		carnivallog.SetLevel(carnivallog.LevelVerbose)
	}

	dir, err := carnivalconfig.Dir()
	if err != nil {
		fail(err)
	}
	o, err := orchestrator.New(dir)
	if err != nil {
		fail(err)
	}
	return o
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	os.Exit(1)
}

func failf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}
