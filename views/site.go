// Package views holds the default templates for a folio site, written as
// templ components.
package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// New returns the default ViewFuncs.
func New(cfg folio.SiteConfig) folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:           Home,
		Page:           Page,
		Blog:           Blog,
		Post:           Post,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminPostForm:  AdminPostForm,
		AdminImages:    AdminImages,
		NotFound:       func() templ.Component { return NotFound(cfg) },
		ServerError:    func() templ.Component { return ServerError(cfg) },
	}
}

func nav(h *html, pages []string) {
	h.raw(`<nav class="site-nav"><a href="/">Home</a>`)
	for _, p := range pages {
		h.rawf(`<a href="/%s/">`, attr(pathEscape(p)))
		h.text(folio.TitleCase(p))
		h.raw(`</a>`)
	}
	h.raw(`<a href="/blog/">Blog</a></nav>`)
}

func postList(h *html, posts []folio.BlogPost) {
	if len(posts) == 0 {
		h.raw(`<p class="empty">No posts yet.</p>`)
		return
	}
	h.raw(`<ul class="posts">`)
	for _, p := range posts {
		h.rawf(`<li><a href="%s">`, attr(p.Link))
		h.text(p.Title)
		h.raw(`</a> `)
		h.tag("time", ` datetime="`+attr(p.Date)+`"`, p.Date)
		if p.Summary != "" {
			h.tag("p", "", p.Summary)
		}
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

// Home renders the landing page with the latest posts.
func Home(posts []folio.BlogPost, cfg folio.SiteConfig) templ.Component {
	return layout(cfg.Name, func(h *html) {
		nav(h, cfg.Pages)
		h.raw(`<header class="hero">`)
		h.tag("h1", "", cfg.Name)
		if cfg.Description != "" {
			h.tag("p", "", cfg.Description)
		}
		h.raw(`<a class="cta" href="/contact/">Start a project</a></header>`)
		h.raw(`<section><h2>From the blog</h2>`)
		postList(h, posts)
		h.raw(`</section>`)
	})
}

// Page renders a marketing page. The portfolio page is filled client-side
// from the gallery API.
func Page(name string, cfg folio.SiteConfig) templ.Component {
	title := folio.TitleCase(name)
	return layout(title+" | "+cfg.Name, func(h *html) {
		nav(h, cfg.Pages)
		h.rawf(`<main class="page page-%s">`, attr(name))
		h.tag("h1", "", title)
		if name == "portfolio" {
			h.raw(`<div id="gallery" data-categories="/api/portfolio/categories" data-images="/api/images" data-root="/`)
			h.raw(attr(cfg.PortfolioDir))
			h.raw(`"></div><script src="/js/portfolio.js" defer></script>`)
		}
		h.raw(`</main>`)
	})
}

// Blog renders the post index with tag filters.
func Blog(posts []folio.BlogPost, activeTag string, tags []string) templ.Component {
	return layout("Blog", func(h *html) {
		h.raw(`<main class="blog"><h1>Blog</h1><div class="tags"><a href="/blog/">All</a>`)
		for _, t := range tags {
			class := "tag"
			if t == activeTag {
				class += " active"
			}
			h.rawf(`<a class="%s" href="/blog/?tag=%s">`, class, attr(pathEscape(t)))
			h.text(t)
			h.raw(`</a>`)
		}
		h.raw(`</div>`)
		postList(h, posts)
		h.raw(`</main>`)
	})
}

// Post renders a single post and related posts.
func Post(post folio.BlogPost, related []folio.BlogPost) templ.Component {
	return layout(post.Title, func(h *html) {
		h.raw(`<article class="post">`)
		h.tag("h1", "", post.Title)
		h.tag("time", ` datetime="`+attr(post.Date)+`"`, post.Date)
		if len(post.Tags) > 0 {
			h.tag("p", ` class="tags"`, JoinTags(post.Tags))
		}
		for _, para := range paragraphs(post.Content) {
			h.tag("p", "", para)
		}
		h.raw(`</article>`)
		if len(related) > 0 {
			h.raw(`<aside><h2>Related</h2>`)
			postList(h, related)
			h.raw(`</aside>`)
		}
	})
}

// NotFound renders the 404 page.
func NotFound(cfg folio.SiteConfig) templ.Component {
	return layout("Not found | "+cfg.Name, func(h *html) {
		h.raw(`<main class="error"><h1>Page not found</h1><p><a href="/">Back home</a></p></main>`)
	})
}

// ServerError renders the 500 page.
func ServerError(cfg folio.SiteConfig) templ.Component {
	return layout("Error | "+cfg.Name, func(h *html) {
		h.raw(`<main class="error"><h1>Something went wrong</h1><p>Please try again shortly.</p></main>`)
	})
}
