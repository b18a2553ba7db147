package folio

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("  Hello World! "))
	assert.Equal(t, "cafe-logo", Slugify("Café Logo"))
	assert.Equal(t, "", Slugify("   "))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com/", BuildURL("https://example.com"))
	assert.Equal(t, "https://example.com/blog/post/", BuildURL("https://example.com", "blog", "post"))
	assert.Equal(t, "https://example.com/sub/blog/", BuildURL("https://example.com/sub/", "blog"))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, SplitTags(" go, ,web ,"))
	assert.Nil(t, SplitTags(""))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Brand Kits", TitleCase("brand-kits"))
	assert.Equal(t, "About", TitleCase("about"))
}

func TestFilterRelatedPosts(t *testing.T) {
	current := BlogPost{Slug: "a", Tags: []string{"Print"}}
	posts := []BlogPost{
		current,
		{Slug: "b", Tags: []string{"print"}},
		{Slug: "c", Tags: []string{"web"}},
		{Slug: "d", Tags: []string{"web", " PRINT "}},
	}
	assert.Equal(t, []string{"b", "d"}, slugs(FilterRelatedPosts(current, posts)))
}

func TestBuildFeed(t *testing.T) {
	cfg := SiteConfig{Name: "Studio", URL: "https://studio.test", Description: "Design"}
	feed := buildFeed(cfg, []BlogPost{
		{Slug: "new", Title: "New", Date: "2025-02-01", Tags: []string{"print"}, Summary: "s"},
		{Slug: "undated", Title: "Undated", Date: "soon"},
	})

	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "https://studio.test/", feed.Channel.Link)
	require.Len(t, feed.Channel.Items, 2)
	assert.Equal(t, "https://studio.test/blog/new/", feed.Channel.Items[0].GUID)
	assert.Equal(t, "Sat, 01 Feb 2025 00:00:00 +0000", feed.Channel.Items[0].PubDate)
	assert.Empty(t, feed.Channel.Items[1].PubDate)
	assert.Equal(t, feed.Channel.Items[0].PubDate, feed.Channel.LastBuildDate)

	out, err := xml.Marshal(feed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `<rss version="2.0"><channel><title>Studio</title>`))
	assert.Contains(t, string(out), "<category>print</category>")
}
