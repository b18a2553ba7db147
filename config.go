package folio

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/gallery"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Studio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS
	Author      string `yaml:"author"`

	Addr           string `yaml:"addr"`            // Listen address (default ":3000")
	DatabaseDriver string `yaml:"database_driver"` // "sqlite" (default) or "mysql"
	DatabaseDSN    string `yaml:"database_dsn"`    // SQLite path or MySQL DSN (default "data/site.db")

	AssetRoot    string   `yaml:"asset_root"`    // Served at "/" (default "public")
	PortfolioDir string   `yaml:"portfolio_dir"` // Relative to AssetRoot (default "images/portfolio")
	Pages        []string `yaml:"pages"`         // Marketing pages served at /<name>/

	AdminPassword     string `yaml:"-"` // Plain admin password, compared in constant time
	AdminPasswordHash string `yaml:"-"` // bcrypt hash, preferred over AdminPassword
	SessionSecret     string `yaml:"-"` // Required: session encryption secret
	CookieSecure      bool   `yaml:"cookie_secure"`

	PostCacheTTL     time.Duration `yaml:"post_cache_ttl"`     // default 5m
	CategoryCacheTTL time.Duration `yaml:"category_cache_ttl"` // default 10m
	WatchPortfolio   bool          `yaml:"watch_portfolio"`    // invalidate categories on fs events
}

var defaultPages = []string{"about", "services", "portfolio", "contact"}

// SetDefaults fills every unset field with its default.
func (c *SiteConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "Studio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = "sqlite"
	}
	if c.DatabaseDSN == "" && c.DatabaseDriver == "sqlite" {
		c.DatabaseDSN = "data/site.db"
	}
	if c.AssetRoot == "" {
		c.AssetRoot = "public"
	}
	if c.PortfolioDir == "" {
		c.PortfolioDir = "images/portfolio"
	}
	if c.Pages == nil {
		c.Pages = append([]string(nil), defaultPages...)
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.CategoryCacheTTL == 0 {
		c.CategoryCacheTTL = gallery.DefaultCategoryTTL
	}
}

func (c *SiteConfig) validate() error {
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("folio: AdminPassword or AdminPasswordHash is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	switch c.DatabaseDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("folio: unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("folio: DatabaseDSN is required for %s", c.DatabaseDriver)
	}
	return nil
}

// LoadConfigFile overlays the YAML file at path onto cfg. Secrets are never
// read from the file; they come from the environment.
func LoadConfigFile(path string, cfg *SiteConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with every environment variable that is set.
func (c *SiteConfig) ApplyEnv() {
	strs := []struct {
		key string
		dst *string
	}{
		{"SITE_NAME", &c.Name},
		{"SITE_URL", &c.URL},
		{"SITE_DESCRIPTION", &c.Description},
		{"SITE_AUTHOR", &c.Author},
		{"ADDR", &c.Addr},
		{"DATABASE_DRIVER", &c.DatabaseDriver},
		{"DATABASE_DSN", &c.DatabaseDSN},
		{"ASSET_ROOT", &c.AssetRoot},
		{"PORTFOLIO_DIR", &c.PortfolioDir},
		{"ADMIN_PASSWORD", &c.AdminPassword},
		{"ADMIN_PASSWORD_HASH", &c.AdminPasswordHash},
		{"ADMIN_SESSION_SECRET", &c.SessionSecret},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.CookieSecure = v == "true"
	}
	if v := os.Getenv("WATCH_PORTFOLIO"); v != "" {
		c.WatchPortfolio = v == "true"
	}
	if d, err := time.ParseDuration(os.Getenv("CATEGORY_CACHE_TTL")); err == nil {
		c.CategoryCacheTTL = d
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
