// Package main provides the entry point for the patent linkage CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patent_linker",
	Short: "Patent ownership and startup survival linkage pipeline",
	Long:  "Patent Linker crawls a startup directory, fuzzily links companies to patent assignees, builds per-company patent portfolios, and exports the survival dataset used for econometric analysis.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
