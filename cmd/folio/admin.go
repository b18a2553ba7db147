package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio"
	"github.com/eringen/folio/gallery"
	"github.com/eringen/folio/scaffold"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		pass := strings.TrimRight(line, "\r\n")
		if pass == "" {
			return fmt.Errorf("password is empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a new site directory with config, assets and portfolio categories",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var cfg folio.SiteConfig
	cfg.Name = folio.TitleCase(filepath.Base(dir))
	cfg.SetDefaults()

	created, err := scaffold.Write(osfs.New(dir, osfs.WithBoundOS()), scaffold.Data{
		SiteName:     cfg.Name,
		PortfolioDir: cfg.PortfolioDir,
		Categories:   gallery.FallbackCategories,
	})
	for _, p := range created {
		fmt.Fprintf(cmd.OutOrStdout(), "  created %s\n", filepath.Join(dir, p))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: cd %s, copy .env.example to .env, set the secrets, then run 'folio serve'.\n", dir)
	return nil
}
