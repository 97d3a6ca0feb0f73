package cmd

import (
	"os"

	"github.com/rogerio-castellano/inventory-app/internal/logger"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog into the configured store",
	Long: `seed creates the five demo products (Laptop, Mouse, Keyboard, Monitor,
USB Cable) in the configured store. Running it twice creates them twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(os.Stdout, cfg.Log.Level)

		store, closeStore, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := repo.Seed(cmd.Context(), store, repo.DemoProducts())
		if err != nil {
			return err
		}
		log.Info("Demo products loaded", "count", n, "backend", cfg.Store.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
