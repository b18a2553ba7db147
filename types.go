package folio

import "github.com/eringen/folio/gallery"

// BlogPost is the core content type stored in the database and rendered by
// templates.
type BlogPost struct {
	Title     string
	Date      string
	Tags      []string
	Summary   string
	Link      string
	Slug      string
	Content   string
	Published bool
}

// PostForm is the admin post editor submission.
type PostForm struct {
	OriginalSlug string `form:"original_slug"`
	Title        string `form:"title" validate:"required_without=Slug,max=200"`
	Slug         string `form:"slug" validate:"omitempty,max=191"`
	Date         string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Tags         string `form:"tags"`
	Summary      string `form:"summary" validate:"max=500"`
	Content      string `form:"content"`
	Published    string `form:"published"`
}

// ImageGroup is one portfolio category and the images found in it.
type ImageGroup struct {
	Category string
	Images   []gallery.ImageRecord
}
