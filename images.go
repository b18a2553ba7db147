package folio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5/util"
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/folio/gallery"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 85
	maxUploadSize = 10 << 20 // 10MB
)

// Errors returned by the portfolio image operations. All of them describe
// bad admin input and map to 400.
var (
	// ErrInvalidCategory is returned for a category that is not a lowercase slug.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidFilename is returned for names with separators, ".." or a
	// non-image extension.
	ErrInvalidFilename = errors.New("invalid image filename")
	// ErrUnsupportedImage is returned for uploads that are too large or not
	// JPEG, PNG, GIF or WebP.
	ErrUnsupportedImage = errors.New("unsupported image type")
	// ErrImageExists is returned when a rename target is taken.
	ErrImageExists = errors.New("image already exists")
	// ErrImageNotFound is returned when the image to rename does not exist.
	ErrImageNotFound = errors.New("image not found")
)

var uploadTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// processImage sniffs and decodes an upload, scales it down to
// maxImageWidth and re-encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, fmt.Errorf("%w: larger than 10MB", ErrUnsupportedImage)
	}
	if mt := mimetype.Detect(data); !mimetype.EqualsAny(mt.String(), uploadTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func validCategory(category string) bool {
	return slug.IsSlug(category)
}

// validImageName accepts a bare image filename: no separators, no parent
// segments.
func validImageName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..") &&
		gallery.IsImage(name)
}

// categoryDir is the asset-filesystem path of a portfolio category.
func (a *App) categoryDir(category string) string {
	return path.Join(a.Config.PortfolioDir, category)
}

func (a *App) exists(p string) (bool, error) {
	_, err := a.assets.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// uniqueName returns base+".jpg", or base-N.jpg if that is taken in dir.
func (a *App) uniqueName(dir, base string) (string, error) {
	candidate := base + ".jpg"
	for n := 2; ; n++ {
		taken, err := a.exists(path.Join(dir, candidate))
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, n)
	}
}

// StoreUpload writes an uploaded image into the category directory and
// returns its public src. Creating a new category directory invalidates the
// category cache.
func (a *App) StoreUpload(category, originalName string, src io.Reader) (string, error) {
	if !validCategory(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	data, err := processImage(src)
	if err != nil {
		return "", err
	}

	dir := a.categoryDir(category)
	dirExisted, err := a.exists(dir)
	if err != nil {
		return "", err
	}
	if err := a.assets.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	base := Slugify(strings.TrimSuffix(originalName, path.Ext(originalName)))
	if base == "" {
		base = "image"
	}
	name, err := a.uniqueName(dir, base)
	if err != nil {
		return "", err
	}
	if err := util.WriteFile(a.assets, path.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	if !dirExisted {
		a.Categories.Invalidate()
	}
	return gallery.PublicSrc(dir, name), nil
}

// RenameImage gives filename in category a new slugged name, keeping the
// extension. It never overwrites another image.
func (a *App) RenameImage(category, filename, newName string) (string, error) {
	if !validCategory(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if !validImageName(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	ext := strings.ToLower(path.Ext(filename))
	base := Slugify(strings.TrimSuffix(newName, path.Ext(newName)))
	if base == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidFilename)
	}
	target := base + ext

	dir := a.categoryDir(category)
	from, to := path.Join(dir, filename), path.Join(dir, target)
	if ok, err := a.exists(from); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, filename)
	}
	if target == filename {
		return target, nil
	}
	if ok, err := a.exists(to); err != nil {
		return "", err
	} else if ok {
		return "", fmt.Errorf("%w: %s", ErrImageExists, target)
	}
	if err := a.assets.Rename(from, to); err != nil {
		return "", fmt.Errorf("rename image: %w", err)
	}
	return target, nil
}

// DeleteImage removes filename from category. A missing file is not an error.
func (a *App) DeleteImage(category, filename string) error {
	if !validCategory(category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if !validImageName(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	err := a.assets.Remove(path.Join(a.categoryDir(category), filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// ImageGroups scans every portfolio category.
func (a *App) ImageGroups() ([]ImageGroup, []string) {
	cats := a.Categories.Get()
	if cats.Fallback {
		a.Echo.Logger.Warnf("admin images: using fallback categories: %v", cats.Err)
	}
	groups := make([]ImageGroup, 0, len(cats.Names))
	for _, cat := range cats.Names {
		groups = append(groups, ImageGroup{
			Category: cat,
			Images:   a.Scanner.ListImages("/" + a.categoryDir(cat)),
		})
	}
	return groups, cats.Names
}

// userError reports whether err is caused by bad admin input rather than a
// server fault.
func userError(err error) bool {
	for _, target := range []error{ErrInvalidCategory, ErrInvalidFilename, ErrUnsupportedImage, ErrImageExists, ErrImageNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	category := strings.ToLower(strings.TrimSpace(c.FormValue("category")))
	srcURL, err := a.StoreUpload(category, file.Filename, src)
	if err != nil {
		if userError(err) {
			return a.renderImageList(c, http.StatusBadRequest, err.Error())
		}
		return err
	}
	c.Logger().Infof("admin: uploaded %s", srcURL)
	return a.renderImageList(c, http.StatusOK, "uploaded "+srcURL)
}

func (a *App) handleImageRename(c echo.Context) error {
	category := c.FormValue("category")
	filename := c.FormValue("filename")
	target, err := a.RenameImage(category, filename, c.FormValue("name"))
	if err != nil {
		if userError(err) {
			return a.renderImageList(c, http.StatusBadRequest, err.Error())
		}
		return err
	}
	return a.renderImageList(c, http.StatusOK, fmt.Sprintf("renamed %s to %s", filename, target))
}

// handleImageDelete serves both the DELETE route, which names the image in
// the path, and the admin form, which posts it as fields.
func (a *App) handleImageDelete(c echo.Context) error {
	category, filename := c.Param("category"), c.Param("filename")
	if category == "" {
		category, filename = c.FormValue("category"), c.FormValue("filename")
	}
	if err := a.DeleteImage(category, filename); err != nil {
		if userError(err) {
			return a.renderImageList(c, http.StatusBadRequest, err.Error())
		}
		return err
	}
	return a.renderImageList(c, http.StatusOK, "deleted")
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c, http.StatusOK, c.QueryParam("msg"))
}

func (a *App) renderImageList(c echo.Context, code int, msg string) error {
	groups, categories := a.ImageGroups()
	return RenderStatus(c, code, a.Views.AdminImages(groups, categories, msg, CsrfToken(c)))
}
