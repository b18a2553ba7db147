package gallery

import (
	"path"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// categoryRules maps path substrings to display categories. Order matters:
// the first substring found in the path wins.
var categoryRules = []struct {
	substr   string
	category string
}{
	{"logos", "logo"},
	{"branding", "graphics"},
	{"fliers", "flier"},
	{"websites", "website"},
}

// Uncategorized is the category for paths that match no rule.
const Uncategorized = "uncategorized"

// IsImage reports whether name has a gallery image extension, ignoring case.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// AltText derives alt text from a filename: the extension is dropped and
// hyphens become spaces. Case is kept as-is.
func AltText(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return strings.ReplaceAll(base, "-", " ")
}

// InferCategory classifies a containing path by substring.
func InferCategory(p string) string {
	for _, r := range categoryRules {
		if strings.Contains(p, r.substr) {
			return r.category
		}
	}
	return Uncategorized
}

// PublicSrc builds the URL path of name inside the logical directory dir.
// Backslashes are normalized and the result always starts with "/".
func PublicSrc(dir, name string) string {
	dir = strings.ReplaceAll(dir, `\`, "/")
	return path.Join("/", dir, name)
}
