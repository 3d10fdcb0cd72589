package util

import (
	"strings"
	"testing"
	"time"

	"github.com/mfigueira/folio/internal/model"
)

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("hello"))
	b := ContentHash([]byte("hello"))
	c := ContentHash([]byte("hello!"))

	if a != b {
		t.Error("Equal content must hash equally")
	}
	if a == c {
		t.Error("Different content must not collide")
	}
	if len(a) != 64 {
		t.Errorf("Expected a 64-char hex digest, got %d chars", len(a))
	}
	if a != ContentHashString("hello") {
		t.Error("ContentHashString must agree with ContentHash")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.22 Released!", "go-1-22-released"},
		{"  spaced  out  ", "spaced-out"},
		{"already-a-slug", "already-a-slug"},
		{"¿Qué tal?", "qué-tal"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

const sampleDoc = `%%%
title = "Testing React Components"
slug = "testing-react"
excerpt = "How to test hooks."
date = 2024-03-01T00:00:00Z
keyword = ["React", "Testing", "React"]
area = "Frontend"

[cover]
url = "/img/cover.png"
width = 800
height = 450
alt = "a cover"

[[author]]
fullname = "M. Figueira"
  [author.address]
  email = "m@example.org"
  uri = "https://example.org"
%%%

# Heading

Body text.
`

func TestGetFrontMatter(t *testing.T) {
	fm, err := GetFrontMatter([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("GetFrontMatter: %v", err)
	}

	if fm.Title != "Testing React Components" {
		t.Errorf("Title = %q", fm.Title)
	}
	if fm.Slug != "testing-react" {
		t.Errorf("Slug = %q", fm.Slug)
	}
	if fm.Excerpt != "How to test hooks." {
		t.Errorf("Excerpt = %q", fm.Excerpt)
	}
	if fm.Area != "Frontend" {
		t.Errorf("Area = %q", fm.Area)
	}
	if len(fm.Keyword) != 3 {
		t.Errorf("Keyword = %v", fm.Keyword)
	}
	if fm.Cover.URL != "/img/cover.png" || fm.Cover.Width != 800 {
		t.Errorf("Cover = %+v", fm.Cover)
	}

	body := sampleDoc[fm.Consumed:]
	if !strings.HasPrefix(strings.TrimLeft(body, "\n"), "# Heading") {
		t.Errorf("Consumed offset slices into %q", body[:min(len(body), 20)])
	}
}

func TestGetFrontMatterAbsent(t *testing.T) {
	if _, err := GetFrontMatter([]byte("# Just a doc\n")); err == nil {
		t.Error("Expected an error for a document without front matter")
	}
}

func TestGetFrontMatterUnterminated(t *testing.T) {
	if _, err := GetFrontMatter([]byte("%%%\ntitle = \"x\"\n")); err == nil {
		t.Error("Expected an error for an unterminated block")
	}
}

func TestGetFrontMatterCRLF(t *testing.T) {
	crlf := strings.ReplaceAll(sampleDoc, "\n", "\r\n")
	fm, err := GetFrontMatter([]byte(crlf))
	if err != nil {
		t.Fatalf("GetFrontMatter: %v", err)
	}
	if fm.Title != "Testing React Components" {
		t.Errorf("Title = %q", fm.Title)
	}
}

func TestApplyFrontMatter(t *testing.T) {
	fm, err := GetFrontMatter([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("GetFrontMatter: %v", err)
	}

	var post model.Post
	ApplyFrontMatter(&post, fm)

	if post.Title != "Testing React Components" {
		t.Errorf("Title = %q", post.Title)
	}
	if post.Slug != "testing-react" {
		t.Errorf("Slug = %q", post.Slug)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !post.PublishedDate.Equal(want) {
		t.Errorf("PublishedDate = %v", post.PublishedDate)
	}
	// Duplicate "React" collapses; tags come back sorted.
	if len(post.Tags) != 2 || post.Tags[0] != "React" || post.Tags[1] != "Testing" {
		t.Errorf("Tags = %v", post.Tags)
	}
	if post.Category == nil || post.Category.Slug != "frontend" {
		t.Errorf("Category = %+v", post.Category)
	}
	if post.Author == nil || post.Author.Email != "m@example.org" {
		t.Errorf("Author = %+v", post.Author)
	}
	if post.Cover == nil || post.Cover.Height != 450 {
		t.Errorf("Cover = %+v", post.Cover)
	}
}

func TestApplyFrontMatterSlugFallback(t *testing.T) {
	doc := "%%%\ntitle = \"No Slug Here\"\n%%%\nbody\n"
	fm, err := GetFrontMatter([]byte(doc))
	if err != nil {
		t.Fatalf("GetFrontMatter: %v", err)
	}

	var post model.Post
	ApplyFrontMatter(&post, fm)
	if post.Slug != "no-slug-here" {
		t.Errorf("Slug = %q, want slugified title", post.Slug)
	}
}

func TestApplyFrontMatterNil(t *testing.T) {
	post := model.Post{Title: "keep"}
	ApplyFrontMatter(&post, nil)
	if post.Title != "keep" {
		t.Error("A nil front matter must leave the post untouched")
	}
}
