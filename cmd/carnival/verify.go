package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyFlags struct {
	workers int
}

var verifyCmd = &cobra.Command{
	Use:   "verify <slug>",
	Short: "Verify an installed game's files against its manifest",
	Args:  cobra.ExactArgs(1),
	Run:   runVerify,
}

func init() {
	verifyCmd.Flags().IntVar(&verifyFlags.workers, "workers", 4, "Concurrent per-file hashing workers")
	RootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	slug := args[0]
	o := newOrchestrator()

	report, err := o.Verify(context.Background(), slug, verifyFlags.workers)
	if err != nil {
		fail(err)
	}

	if report.Pass() {
		fmt.Printf("%s: OK\n", slug)
		return
	}

	fmt.Printf("%s: FAILED\n", slug)
	for _, f := range report.Failures {
		fmt.Printf("  %s\n", f.String())
	}
	failf("%d file(s) failed verification", len(report.Failures))
}
