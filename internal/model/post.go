// Package model defines core data structures and types for the blog application.
package model

import (
	"html/template"
	"sort"
	"time"
)

type PostID string

// Category groups posts under a named section of the site.
type Category struct {
	Name string
	Slug string
}

// CoverImage carries explicit dimensions so pages can reserve layout space.
type CoverImage struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

type Author struct {
	Name    string
	Email   string
	Website string
	Image   string
}

type Post struct {
	ID PostID

	// Slug is unique across the corpus and is the sole addressing key.
	Slug string

	Title   string
	Excerpt string
	Content template.HTML

	// Used for cache busting.
	// We cannot use the content hash because the content is already rendered.
	MDContentHash string

	Markdown      []byte
	PublishedDate time.Time
	ModifiedDate  time.Time

	Tags     []string
	Category *Category
	Cover    *CoverImage
	Author   *Author

	// Relevance is derived per related-posts query and never persisted.
	Relevance int
}

func (p *Post) GetTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Slug
}

// TagSet returns the post's tags as a set.
func (p *Post) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		set[tag] = struct{}{}
	}
	return set
}

// NormalizeTags deduplicates the tag list in place, sorted so list views are
// stable across reloads.
func (p *Post) NormalizeTags() {
	set := p.TagSet()
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	p.Tags = tags
}

func (p *Post) HasBody() bool {
	return len(p.Markdown) > 0
}
