// Package scaffold holds the starter files written by "folio init".
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Templates contains the starter tree. Files ending in .tmpl are executed
// with text/template and written without the suffix; "dotenv" becomes
// ".env.example".
//
//go:embed all:templates
var Templates embed.FS

// Data is passed to every template.
type Data struct {
	SiteName     string
	PortfolioDir string
	Categories   []string
}

// Write renders the starter tree into dst, which must not already contain a
// folio.yaml. It returns the paths it created.
func Write(dst billy.Filesystem, data Data) ([]string, error) {
	if _, err := dst.Stat("folio.yaml"); err == nil {
		return nil, fmt.Errorf("scaffold: folio.yaml already exists in %s", dst.Root())
	}

	const root = "templates"
	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		out := strings.TrimPrefix(p, root+"/")
		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if strings.HasSuffix(out, ".tmpl") {
			out = strings.TrimSuffix(out, ".tmpl")
			tmpl, err := template.New(path.Base(p)).Parse(string(content))
			if err != nil {
				return fmt.Errorf("parse template %s: %w", p, err)
			}
			var b strings.Builder
			if err := tmpl.Execute(&b, data); err != nil {
				return fmt.Errorf("execute template %s: %w", p, err)
			}
			content = []byte(b.String())
		}
		if path.Base(out) == "dotenv" {
			out = path.Join(path.Dir(out), ".env.example")
		}
		if err := util.WriteFile(dst, out, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		created = append(created, out)
		return nil
	})
	if err != nil {
		return created, err
	}

	// One directory per category so the portfolio page has tabs from the
	// start.
	for _, c := range data.Categories {
		keep := path.Join("public", data.PortfolioDir, c, ".gitkeep")
		if err := util.WriteFile(dst, keep, nil, 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", keep, err)
		}
		created = append(created, keep)
	}
	return created, nil
}
