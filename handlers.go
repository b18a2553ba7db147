package folio

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

const homePostCount = 3

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Posts.Recent(homePostCount)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(posts, a.Config))
}

func (a *App) handlePage(c echo.Context) error {
	name := strings.ToLower(c.Param("page"))
	if !slices.Contains(a.Config.Pages, name) {
		return echo.ErrNotFound
	}
	return Render(c, a.Views.Page(name, a.Config))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Posts.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Posts.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(posts, tag, tags))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Posts.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Posts.ListPosts("")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(post, FilterRelatedPosts(post, posts)))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Posts.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := http.StatusText(code)
		if he != nil && code < 500 {
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		_ = c.JSON(code, apiError{Error: msg})
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
