package main

import (
	"encoding/json"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/eringen/folio/gallery"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Print the image records the gallery API returns for a path",
	Long: `Print the image records the gallery API returns for a logical path
under the asset root, as JSON.

Examples:
  folio scan /images/portfolio/logos`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the portfolio categories",
	RunE:  runCategories,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scanner := gallery.NewScanner(osfs.New(cfg.AssetRoot, osfs.WithBoundOS()), log.New("folio"))
	res := scanner.Scan(args[0])
	switch res.Status {
	case gallery.ScanRejected, gallery.ScanFailed:
		return res.Err
	case gallery.ScanNotFound:
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: directory not found\n", args[0])
	}
	out, err := json.MarshalIndent(res.Records, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cache := gallery.NewCategoryCache(osfs.New(cfg.AssetRoot, osfs.WithBoundOS()), cfg.PortfolioDir, cfg.CategoryCacheTTL)
	cats := cache.Get()
	if cats.Fallback {
		fmt.Fprintf(cmd.ErrOrStderr(), "using fallback categories: %v\n", cats.Err)
	}
	for _, c := range cats.Names {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}
