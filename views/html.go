package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates the first write error so components can be written as
// straight-line code.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// tag writes an element whose content is escaped text.
func (h *html) tag(name, attrs, content string) {
	h.raw("<" + name + attrs + ">")
	h.text(content)
	h.raw("</" + name + ">")
}

func (h *html) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func attr(s string) string {
	return templ.EscapeString(s)
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}

// component adapts a body writer to templ.Component.
func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(h)
		return h.err
	})
}

// layout wraps body in the site shell. Admin pages are plain forms and load
// no scripts.
func layout(title string, body func(h *html)) templ.Component {
	return component(func(h *html) {
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.tag("title", "", title)
		h.raw(`<link rel="stylesheet" href="/css/site.css">`)
		h.raw(`</head><body>`)
		body(h)
		h.raw(`</body></html>`)
	})
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// paragraphs splits post content on blank lines.
func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
