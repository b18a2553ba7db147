package folio

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var errSlugRequired = errors.New("slug is required: add a title or slug")

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if !a.checkPassword(c.FormValue("password")) {
		a.loginLimiter.Record(ip)
		c.Logger().Warnf("admin: failed login from %s", ip)
		return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminPostForm(post, CsrfToken(c)))
}

// handleAdminSave creates or updates a post. A changed slug renames the
// post identified by original_slug.
func (a *App) handleAdminSave(c echo.Context) error {
	var form PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return a.renderAdminDashboard(c, "Invalid post: "+validationMessage(err))
	}

	post, err := form.toPost(time.Now())
	if err != nil {
		return a.renderAdminDashboard(c, err.Error())
	}

	original := strings.TrimSpace(form.OriginalSlug)
	if original != "" && original != post.Slug {
		err = a.Store.RenamePost(original, post)
	} else {
		err = a.Store.SavePost(post)
	}
	switch {
	case errors.Is(err, ErrSlugTaken):
		return a.renderAdminDashboard(c, fmt.Sprintf("Slug %q is already used by another post.", post.Slug))
	case errors.Is(err, ErrNotFound):
		return a.renderAdminDashboard(c, fmt.Sprintf("Post %q no longer exists.", original))
	case err != nil:
		return err
	}
	a.Posts.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return err
	}
	a.Posts.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

// toPost normalizes the form: the slug falls back to the title, the date to
// today.
func (f PostForm) toPost(now time.Time) (BlogPost, error) {
	title := strings.TrimSpace(f.Title)
	slug := Slugify(f.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return BlogPost{}, errSlugRequired
	}
	date := strings.TrimSpace(f.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	}
	return BlogPost{
		Slug:      slug,
		Title:     title,
		Date:      date,
		Tags:      SplitTags(f.Tags),
		Summary:   f.Summary,
		Content:   f.Content,
		Published: f.Published != "",
	}, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}
