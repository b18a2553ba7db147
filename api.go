package folio

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/gallery"
)

const (
	imagesCacheControl     = "public, max-age=300"
	categoriesCacheControl = "public, max-age=60"
)

type apiError struct {
	Error string `json:"error"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Error      string   `json:"error,omitempty"`
}

// handleImages serves GET /api/images?path=<logical path>.
func (a *App) handleImages(c echo.Context) error {
	p := c.QueryParam("path")
	if err := gallery.ValidateLogicalPath(p); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: err.Error()})
	}

	res := a.Scanner.Scan(p)
	switch res.Status {
	case gallery.ScanRejected:
		return c.JSON(http.StatusBadRequest, apiError{Error: res.Err.Error()})
	case gallery.ScanFailed:
		return c.JSON(http.StatusInternalServerError, apiError{Error: "failed to read images"})
	}

	c.Response().Header().Set("Cache-Control", imagesCacheControl)
	return c.JSON(http.StatusOK, res.Records)
}

// handleCategories serves GET /api/portfolio/categories. It always answers
// 200; a degraded answer carries an "error" field next to the fallback list.
func (a *App) handleCategories(c echo.Context) error {
	cats := a.Categories.Get()
	resp := categoriesResponse{Categories: cats.Names}
	if cats.Fallback {
		c.Logger().Warnf("portfolio categories: serving fallback: %v", cats.Err)
		resp.Error = "failed to read portfolio categories"
	}
	c.Response().Header().Set("Cache-Control", categoriesCacheControl)
	return c.JSON(http.StatusOK, resp)
}
