// Command folio serves a folio site and provides tooling for its content.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

// version is set at build time via ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "folio - agency site with a portfolio gallery, blog and admin",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "folio.yaml", "Path to the YAML site config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads .env (if any), the YAML file (if any) and then the
// environment, in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (folio.SiteConfig, error) {
	var cfg folio.SiteConfig
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := folio.LoadConfigFile(configPath, &cfg); err != nil {
			return cfg, err
		}
	} else if cmd.Flags().Changed("config") {
		return cfg, fmt.Errorf("config file %s: %w", configPath, err)
	}
	cfg.ApplyEnv()
	cfg.SetDefaults()
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
	},
}
