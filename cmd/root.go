package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var backendFlag string

// rootCmd serves the API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory product API",
	Long: `inventory serves a product CRUD API over one of several stores
(memory, redis, mongo, postgres, bolt), chosen with STORE_BACKEND or --backend.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "store backend, overrides STORE_BACKEND")
}
