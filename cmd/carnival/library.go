package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect the local product library cache",
	Run:   runLibraryList,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every product cached in the library",
	Run:   runLibraryList,
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	RootCmd.AddCommand(libraryCmd)
}

func runLibraryList(cmd *cobra.Command, args []string) {
	o := newOrchestrator()

	products, err := o.Library.All()
	if err != nil {
		fail(err)
	}
	if len(products) == 0 {
		fmt.Println("library is empty")
		return
	}
	for _, p := range products {
		fmt.Printf("%s  %s  (%d versions)\n", p.Slug, p.Name, len(p.Versions))
	}
}
