package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "askdb",
		Short:   "Bilingual natural-language chat over the Northwind database",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
