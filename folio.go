// Package folio is the web application for an agency site: marketing pages,
// a portfolio gallery read from the asset directory, a blog, and a small
// admin area for posts and portfolio images.
//
// Templates are supplied by the caller through ViewFuncs; the views package
// has a default set.
package folio

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/gallery"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home           func(posts []BlogPost, cfg SiteConfig) templ.Component
	Page           func(name string, cfg SiteConfig) templ.Component
	Blog           func(posts []BlogPost, activeTag string, tags []string) templ.Component
	Post           func(post BlogPost, related []BlogPost) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []BlogPost, message string, csrfToken string) templ.Component
	AdminPostForm  func(post BlogPost, csrfToken string) templ.Component
	AdminImages    func(groups []ImageGroup, categories []string, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the store, caches, gallery, handlers and middleware.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Store      *Store
	Posts      *PostCache
	Scanner    *gallery.Scanner
	Categories *gallery.CategoryCache
	Views      ViewFuncs

	assets       billy.Filesystem
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	stopWatch    context.CancelFunc
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.SetDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(log.INFO)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the store, builds the gallery and installs middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabaseDriver, a.Config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Posts = NewPostCache(store, a.Config.PostCacheTTL)

	// Bound mode resolves symlinks inside the root, so nothing under the
	// asset root can point the gallery outside of it.
	a.assets = osfs.New(a.Config.AssetRoot, osfs.WithBoundOS())
	a.Scanner = gallery.NewScanner(a.assets, a.Echo.Logger)
	a.Categories = gallery.NewCategoryCache(a.assets, a.Config.PortfolioDir, a.Config.CategoryCacheTTL)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.WatchPortfolio {
		ctx, cancel := context.WithCancel(context.Background())
		dir := filepath.Join(a.Config.AssetRoot, filepath.FromSlash(a.Config.PortfolioDir))
		if err := gallery.WatchPortfolio(ctx, dir, a.Categories, a.Echo.Logger); err != nil {
			cancel()
			a.Echo.Logger.Warnf("portfolio watcher disabled: %v", err)
		} else {
			a.stopWatch = cancel
		}
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs Setup and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/", assetFS{fs: a.assets})

	// Public site
	e.GET("/", a.handleHome)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/:page/", a.handlePage)

	// Gallery API
	e.GET("/api/images", a.handleImages)
	e.GET("/api/portfolio/categories", a.handleCategories)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	guard := a.requireAdmin
	e.GET("/admin/post/:slug/", a.handleAdminPost, guard)
	e.POST("/admin/save/", a.handleAdminSave, guard)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete, guard)
	e.POST("/admin/post/:slug/delete/", a.handleAdminDelete, guard)
	e.GET("/admin/images/", a.handleImageList, guard)
	e.POST("/admin/images/upload/", a.handleImageUpload, guard)
	e.POST("/admin/images/rename/", a.handleImageRename, guard)
	e.POST("/admin/images/delete/", a.handleImageDelete, guard)
	e.DELETE("/admin/images/:category/:filename/", a.handleImageDelete, guard)
}

// Close releases the store and stops the portfolio watcher.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
