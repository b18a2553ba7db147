package folio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "hunter2"

func text(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(posts []BlogPost, cfg SiteConfig) templ.Component { return text("home:%d", len(posts)) },
		Page: func(name string, cfg SiteConfig) templ.Component { return text("page:%s", name) },
		Blog: func(posts []BlogPost, activeTag string, tags []string) templ.Component {
			return text("blog:%d:%s", len(posts), activeTag)
		},
		Post:       func(post BlogPost, related []BlogPost) templ.Component { return text("post:%s", post.Slug) },
		AdminLogin: func(showError bool, csrfToken string) templ.Component { return text("login:%v", showError) },
		AdminDashboard: func(posts []BlogPost, msg string, csrfToken string) templ.Component {
			return text("dashboard:%d:%s", len(posts), msg)
		},
		AdminPostForm: func(post BlogPost, csrfToken string) templ.Component { return text("form:%s", post.Slug) },
		AdminImages: func(groups []ImageGroup, categories []string, msg string, csrfToken string) templ.Component {
			return text("images:%d:%s", len(groups), msg)
		},
		NotFound:    func() templ.Component { return text("not found") },
		ServerError: func() templ.Component { return text("server error") },
	}
}

// newTestApp returns a set-up App whose asset root is a temp dir.
func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	assets := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(assets, 0o755))

	a := New(SiteConfig{
		Name:          "Studio",
		URL:           "https://studio.test",
		DatabaseDSN:   filepath.Join(dir, "site.db"),
		AssetRoot:     assets,
		AdminPassword: testPassword,
		SessionSecret: "test-secret-test-secret-test-sec",
	}, stubViews())
	require.NoError(t, a.Setup())
	t.Cleanup(func() { a.Close() })
	return a, assets
}

func putFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(a, req)
}

func postForm(a *App, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(a, req)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login performs the CSRF round trip and returns the cookies of an admin
// session.
func login(t *testing.T, a *App, password string) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()
	rec := get(a, "/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)

	rec = postForm(a, "/admin/login/", url.Values{"password": {password}, "_csrf": {csrf.Value}}, csrf)
	cookies := []*http.Cookie{csrf}
	if s := cookieNamed(rec, sessionName); s != nil {
		cookies = append(cookies, s)
	}
	return rec, cookies
}

func TestImagesAPIValidation(t *testing.T) {
	a, _ := newTestApp(t)

	for _, target := range []string{
		"/api/images",
		"/api/images?path=",
		"/api/images?path=images/portfolio",
		"/api/images?path=" + url.QueryEscape("/images/../../etc"),
	} {
		rec := get(a, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestImagesAPIListsDirectory(t *testing.T) {
	a, assets := newTestApp(t)
	putFile(t, assets, "images/portfolio/logos/acme-mark.png", 12)
	putFile(t, assets, "images/portfolio/logos/readme.md", 3)

	rec := get(a, "/api/images?path=/images/portfolio/logos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := rec.Body.String()
	assert.Contains(t, body, `"id":1`)
	assert.Contains(t, body, `"src":"/images/portfolio/logos/acme-mark.png"`)
	assert.Contains(t, body, `"alt":"acme mark"`)
	assert.Contains(t, body, `"size":12`)
	assert.Contains(t, body, `"category":"logo"`)
	assert.NotContains(t, body, "readme")

	// The src is servable from the asset root.
	assert.Equal(t, http.StatusOK, get(a, "/images/portfolio/logos/acme-mark.png").Code)
}

func TestImagesAPIMissingDirectoryIsEmpty(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/api/images?path=/images/portfolio/nothing-here")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestImagesAPIReadFailure(t *testing.T) {
	a, assets := newTestApp(t)
	putFile(t, assets, "images/portfolio/not-a-dir", 1)

	rec := get(a, "/api/images?path=/images/portfolio/not-a-dir")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to read images"}`, rec.Body.String())
}

func TestCategoriesAPI(t *testing.T) {
	a, assets := newTestApp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "images", "portfolio", "Cards"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "images", "portfolio", "logos"), 0o755))
	putFile(t, assets, "images/portfolio/stray.jpg", 1)

	rec := get(a, "/api/portfolio/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"categories":["cards","logos"]}`, rec.Body.String())
}

func TestCategoriesAPIFallback(t *testing.T) {
	a, _ := newTestApp(t)

	rec := get(a, "/api/portfolio/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"categories":["cards","fliers","letterheads","logos","profiles"],"error":"failed to read portfolio categories"}`,
		rec.Body.String())
}

func TestPublicPages(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.Store.SavePost(BlogPost{Slug: "hello", Title: "Hello", Date: "2025-01-01", Tags: []string{"news"}, Published: true}))
	require.NoError(t, a.Store.SavePost(BlogPost{Slug: "draft", Title: "Draft", Date: "2025-01-02"}))

	cases := []struct {
		target string
		code   int
		body   string
	}{
		{"/", http.StatusOK, "home:1"},
		{"/about/", http.StatusOK, "page:about"},
		{"/portfolio/", http.StatusOK, "page:portfolio"},
		{"/pricing/", http.StatusNotFound, "not found"},
		{"/blog/", http.StatusOK, "blog:1:"},
		{"/blog/?tag=news", http.StatusOK, "blog:1:news"},
		{"/blog/hello/", http.StatusOK, "post:hello"},
		{"/blog/draft/", http.StatusNotFound, "not found"},
	}
	for _, tc := range cases {
		rec := get(a, tc.target)
		assert.Equal(t, tc.code, rec.Code, tc.target)
		assert.Equal(t, tc.body, rec.Body.String(), tc.target)
	}

	rec := get(a, "/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))

	rec = get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<guid>https://studio.test/blog/hello/</guid>")
	assert.NotContains(t, rec.Body.String(), "draft")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	a, _ := newTestApp(t)

	for _, target := range []string{"/admin/images/", "/admin/post/hello/"} {
		rec := get(a, target)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/admin/", rec.Header().Get("Location"), target)
	}

	rec := get(a, "/admin/")
	assert.Equal(t, "login:false", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdminLoginAndSave(t *testing.T) {
	a, _ := newTestApp(t)

	rec, _ := login(t, a, "wrong")
	assert.Equal(t, "login:true", rec.Body.String())

	rec, cookies := login(t, a, testPassword)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, cookies, 2)

	rec = get(a, "/admin/images/", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "images:5:", rec.Body.String(), "fallback categories are listed")

	form := url.Values{
		"_csrf":     {cookies[0].Value},
		"title":     {"Spring Print Run"},
		"date":      {"2025-03-04"},
		"tags":      {"print, news"},
		"content":   {"Fresh cards."},
		"published": {"1"},
	}
	rec = postForm(a, "/admin/save/", form, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard:1:saved", rec.Body.String())
	assert.Equal(t, "post:spring-print-run", get(a, "/blog/spring-print-run/").Body.String())

	form.Set("original_slug", "spring-print-run")
	form.Set("slug", "spring-run")
	rec = postForm(a, "/admin/save/", form, cookies...)
	assert.Equal(t, "dashboard:1:saved", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, get(a, "/blog/spring-print-run/").Code)
	assert.Equal(t, http.StatusOK, get(a, "/blog/spring-run/").Code)

	form.Set("date", "04/03/2025")
	rec = postForm(a, "/admin/save/", form, cookies...)
	assert.Contains(t, rec.Body.String(), "Invalid post: date (datetime)")
}

func TestAdminPostRequiresCSRF(t *testing.T) {
	a, _ := newTestApp(t)
	rec := postForm(a, "/admin/login/", url.Values{"password": {testPassword}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
