// Package gallery reads portfolio images and categories from the asset
// filesystem.
//
// The Scanner turns a logical directory under the asset root into
// ImageRecords. The CategoryCache memoizes the list of portfolio categories
// (subdirectories of the portfolio root) for a fixed TTL and degrades to a
// hardcoded list when the filesystem cannot be read.
package gallery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
)

// ErrInvalidPath is returned for logical paths that are empty, relative, or
// try to climb out of the asset root.
var ErrInvalidPath = errors.New("invalid gallery path")

// createdAtLayout matches the ISO-8601 form browsers produce (millisecond
// precision, "Z" for UTC).
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger is the subset of echo.Logger the gallery needs.
type Logger interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ImageRecord describes one image in a gallery directory. ID is the 1-based
// position in a single scan and is not stable across scans.
type ImageRecord struct {
	ID        int    `json:"id"`
	Src       string `json:"src"`
	Alt       string `json:"alt"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"createdAt"`
	Category  string `json:"category"`
}

// ScanStatus classifies the outcome of a scan.
type ScanStatus int

const (
	// ScanOK means the directory was read.
	ScanOK ScanStatus = iota
	// ScanNotFound means the directory does not exist. Not an error.
	ScanNotFound
	// ScanRejected means the logical path failed validation.
	ScanRejected
	// ScanFailed means an unexpected I/O error occurred.
	ScanFailed
)

func (s ScanStatus) String() string {
	switch s {
	case ScanOK:
		return "ok"
	case ScanNotFound:
		return "not_found"
	case ScanRejected:
		return "rejected"
	case ScanFailed:
		return "failed"
	}
	return fmt.Sprintf("ScanStatus(%d)", int(s))
}

// ScanResult is the outcome of Scanner.Scan. Records is never nil.
type ScanResult struct {
	Records []ImageRecord
	Status  ScanStatus
	Err     error
}

// Scanner lists images below an asset root.
type Scanner struct {
	fs  billy.Filesystem
	log Logger
}

// NewScanner creates a Scanner over fsys, which must be rooted at the asset
// root.
func NewScanner(fsys billy.Filesystem, logger Logger) *Scanner {
	return &Scanner{fs: fsys, log: logger}
}

// ValidateLogicalPath checks a caller-supplied path before it is resolved.
// The path must be non-empty, start with "/" and contain no "..".
func ValidateLogicalPath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("%w: path is required", ErrInvalidPath)
	case !strings.HasPrefix(p, "/"):
		return fmt.Errorf("%w: path must start with /", ErrInvalidPath)
	case strings.Contains(p, ".."):
		return fmt.Errorf("%w: path must not contain ..", ErrInvalidPath)
	}
	return nil
}

// Scan reads the logical directory p and returns its images in listing
// order. The filesystem is never touched for a path containing "..".
func (s *Scanner) Scan(p string) ScanResult {
	if strings.Contains(p, "..") {
		return ScanResult{
			Records: []ImageRecord{},
			Status:  ScanRejected,
			Err:     fmt.Errorf("%w: %q", ErrInvalidPath, p),
		}
	}

	rel := strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
	dir := path.Clean(rel)

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ScanResult{Records: []ImageRecord{}, Status: ScanNotFound}
		}
		s.logf("gallery: scan %q: %v", p, err)
		return ScanResult{
			Records: []ImageRecord{},
			Status:  ScanFailed,
			Err:     fmt.Errorf("read dir %q: %w", dir, err),
		}
	}

	category := InferCategory(rel)
	records := make([]ImageRecord, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !IsImage(fi.Name()) {
			continue
		}
		records = append(records, ImageRecord{
			ID:        len(records) + 1,
			Src:       PublicSrc(rel, fi.Name()),
			Alt:       AltText(fi.Name()),
			Size:      fi.Size(),
			CreatedAt: formatCreatedAt(fi.ModTime()),
			Category:  category,
		})
	}
	return ScanResult{Records: records, Status: ScanOK}
}

// ListImages is Scan without the status: it always returns a slice,
// possibly empty, and never an error.
func (s *Scanner) ListImages(p string) []ImageRecord {
	return s.Scan(p).Records
}

func (s *Scanner) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Errorf(format, args...)
	}
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}
