// Command stockwatch polls retail catalog pages and reports products that
// come back in stock, cheapest first.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "Watch retail catalogs for products coming back in stock",
	Long: `stockwatch fetches a set of catalog listing pages on a fixed interval,
normalizes prices, keeps the in-stock products and announces the ones that
were not in stock on the previous cycle.

Configuration is read from a YAML file (--config). ${VAR} references in the
file are expanded from the environment, which is first populated from
--env-file when that file exists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/stockwatch.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (ignored if missing)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv loads path into the environment without overriding variables
// that are already set.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
