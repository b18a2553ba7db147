package views

import (
	"path"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/gallery"
)

func csrfField(h *html, token string) {
	h.rawf(`<input type="hidden" name="_csrf" value="%s">`, attr(token))
}

// deleteButton is a one-button form posting to action.
func deleteButton(h *html, action, token string, hidden ...string) {
	h.rawf(`<form method="post" action="%s" class="delete">`, attr(action))
	csrfField(h, token)
	for i := 0; i+1 < len(hidden); i += 2 {
		h.rawf(`<input type="hidden" name="%s" value="%s">`, attr(hidden[i]), attr(hidden[i+1]))
	}
	h.raw(`<button type="submit">Delete</button></form>`)
}

func adminNav(h *html, token string) {
	h.raw(`<nav class="admin-nav"><a href="/admin/">Posts</a><a href="/admin/images/">Images</a>`)
	h.raw(`<form method="post" action="/admin/logout/">`)
	csrfField(h, token)
	h.raw(`<button type="submit">Log out</button></form></nav>`)
}

func flash(h *html, msg string) {
	if msg != "" {
		h.tag("p", ` class="flash" role="status"`, msg)
	}
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return layout("Admin login", func(h *html) {
		h.raw(`<main class="admin login"><h1>Admin</h1>`)
		if showError {
			h.raw(`<p class="error">Wrong password.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		csrfField(h, csrfToken)
		h.raw(`<label>Password <input type="password" name="password" required autofocus></label>`)
		h.raw(`<button type="submit">Log in</button></form></main>`)
	})
}

// AdminDashboard lists every post, drafts included, next to an empty editor.
func AdminDashboard(posts []folio.BlogPost, message string, csrfToken string) templ.Component {
	return layout("Admin", func(h *html) {
		h.raw(`<main class="admin">`)
		adminNav(h, csrfToken)
		flash(h, message)
		h.raw(`<table class="posts"><thead><tr><th>Title</th><th>Date</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, p := range posts {
			status := "draft"
			if p.Published {
				status = "published"
			}
			slug := attr(pathEscape(p.Slug))
			h.raw(`<tr>`)
			h.rawf(`<td><a href="/admin/post/%s/">`, slug)
			h.text(p.Title)
			h.raw(`</a></td>`)
			h.tag("td", "", p.Date)
			h.tag("td", "", status)
			h.raw(`<td>`)
			deleteButton(h, "/admin/post/"+pathEscape(p.Slug)+"/delete/", csrfToken)
			h.raw(`</td>`)
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table><section id="editor">`)
		postForm(h, folio.BlogPost{}, csrfToken)
		h.raw(`</section></main>`)
	})
}

// AdminPostForm renders the editor page for one post.
func AdminPostForm(post folio.BlogPost, csrfToken string) templ.Component {
	return layout("Edit "+post.Title, func(h *html) {
		h.raw(`<main class="admin">`)
		adminNav(h, csrfToken)
		postForm(h, post, csrfToken)
		h.raw(`</main>`)
	})
}

func postForm(h *html, post folio.BlogPost, token string) {
	h.raw(`<form method="post" action="/admin/save/" class="editor">`)
	csrfField(h, token)
	h.rawf(`<input type="hidden" name="original_slug" value="%s">`, attr(post.Slug))
	input := func(label, name, typ, value string) {
		h.rawf(`<label>%s <input type="%s" name="%s" value="%s"></label>`, label, typ, name, attr(value))
	}
	input("Title", "title", "text", post.Title)
	input("Slug", "slug", "text", post.Slug)
	input("Date", "date", "date", post.Date)
	input("Tags", "tags", "text", JoinTags(post.Tags))
	h.raw(`<label>Summary <textarea name="summary" rows="2">`)
	h.text(post.Summary)
	h.raw(`</textarea></label><label>Content <textarea name="content" rows="16">`)
	h.text(post.Content)
	h.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
	if post.Published {
		h.raw(` checked`)
	}
	h.raw(`> Published</label><button type="submit">Save</button></form>`)
}

// AdminImages lists portfolio images by category with upload, rename and
// delete controls.
func AdminImages(groups []folio.ImageGroup, categories []string, message string, csrfToken string) templ.Component {
	return layout("Portfolio images", func(h *html) {
		h.raw(`<main class="admin images">`)
		adminNav(h, csrfToken)
		flash(h, message)

		h.raw(`<form class="upload" method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<label>Category <input type="text" name="category" list="categories" required></label><datalist id="categories">`)
		for _, c := range categories {
			h.rawf(`<option value="%s">`, attr(c))
		}
		h.raw(`</datalist><label>Image <input type="file" name="image" accept="image/*" required></label>`)
		h.raw(`<button type="submit">Upload</button></form>`)

		for _, g := range groups {
			h.rawf(`<section class="category" data-category="%s">`, attr(g.Category))
			h.tag("h2", "", folio.TitleCase(g.Category)+" ("+strconv.Itoa(len(g.Images))+")")
			if len(g.Images) == 0 {
				h.raw(`<p class="empty">No images.</p>`)
			}
			for _, img := range g.Images {
				imageCard(h, g.Category, img, csrfToken)
			}
			h.raw(`</section>`)
		}
		h.raw(`</main>`)
	})
}

func imageCard(h *html, category string, img gallery.ImageRecord, token string) {
	name := path.Base(img.Src)
	h.raw(`<figure class="image">`)
	h.rawf(`<img src="%s" alt="%s" loading="lazy">`, attr(img.Src), attr(img.Alt))
	h.raw(`<figcaption>`)
	h.text(name)
	h.rawf(` <small>%d KB</small>`, (img.Size+1023)/1024)
	h.raw(`</figcaption><form method="post" action="/admin/images/rename/">`)
	csrfField(h, token)
	h.rawf(`<input type="hidden" name="category" value="%s"><input type="hidden" name="filename" value="%s">`, attr(category), attr(name))
	h.raw(`<input type="text" name="name" placeholder="new name" required><button type="submit">Rename</button></form>`)
	deleteButton(h, "/admin/images/delete/", token, "category", category, "filename", name)
	h.raw(`</figure>`)
}
