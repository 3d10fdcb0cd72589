package search

import (
	"strings"
	"testing"

	"github.com/mfigueira/folio/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lower-casing", in: "DevOps", want: "devops"},
		{name: "diacritics stripped", in: "café", want: "cafe"},
		{name: "spanish accents", in: "Programación", want: "programacion"},
		{name: "already plain", in: "testing", want: "testing"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	if Normalize("Programación") != Normalize("programacion") {
		t.Error("Accented and plain forms must normalize identically")
	}
}

func TestMatches(t *testing.T) {
	p := model.Post{
		Slug:     "testing-react",
		Title:    "Testing React Components",
		Excerpt:  "Una guía de Programación",
		Markdown: []byte("Body text about continuous integration."),
		Tags:     []string{"DevOps", "React"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "title match", query: "react components", want: true},
		{name: "excerpt match with accents folded", query: "programacion", want: true},
		{name: "body match", query: "continuous integration", want: true},
		{name: "tag match case-folded", query: "devops", want: true},
		{name: "empty query matches", query: "", want: true},
		{name: "no match", query: "kubernetes", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Matches(p, Normalize(tc.query)); got != tc.want {
				t.Errorf("Matches(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestMatchesSkipsAbsentBody(t *testing.T) {
	p := model.Post{Title: "List view", Excerpt: "short"}
	if Matches(p, Normalize("body only text")) {
		t.Error("A post without a body must not match on body text")
	}
}

func testCorpus() []model.Post {
	return []model.Post{
		{Slug: "a", Title: "Go Concurrency", Tags: []string{"go"}},
		{Slug: "b", Title: "React Hooks", Category: &model.Category{Name: "Frontend", Slug: "frontend"}},
		{Slug: "c", Title: "More React", Category: &model.Category{Name: "Frontend", Slug: "frontend"}},
		{Slug: "d", Title: "Postgres Tips", Category: &model.Category{Name: "Databases", Slug: "databases"}},
	}
}

func TestFilterQueryLengthGuard(t *testing.T) {
	corpus := testCorpus()

	atLimit := strings.Repeat("x", 100)
	if got := Filter(corpus, atLimit, ""); len(got) != 0 {
		t.Errorf("A 100-char query applies as a filter; expected 0 matches, got %d", len(got))
	}

	overLimit := strings.Repeat("x", 101)
	if got := Filter(corpus, overLimit, ""); len(got) != len(corpus) {
		t.Errorf("A 101-char query must be a no-op filter; expected %d posts, got %d", len(corpus), len(got))
	}
}

func TestFilterCategory(t *testing.T) {
	corpus := testCorpus()

	got := Filter(corpus, "", "frontend")
	if len(got) != 2 {
		t.Fatalf("Expected 2 frontend posts, got %d", len(got))
	}
	if got[0].Slug != "b" || got[1].Slug != "c" {
		t.Errorf("Expected corpus order [b c], got [%s %s]", got[0].Slug, got[1].Slug)
	}
}

func TestFilterSearchAndCategoryAreANDed(t *testing.T) {
	corpus := testCorpus()

	got := Filter(corpus, "react", "frontend")
	if len(got) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(got))
	}

	got = Filter(corpus, "go", "frontend")
	if len(got) != 0 {
		t.Errorf("Query and category must both hold; got %d matches", len(got))
	}
}

func TestFilterPreservesCorpusOrder(t *testing.T) {
	corpus := testCorpus()

	got := Filter(corpus, "", "")
	if len(got) != len(corpus) {
		t.Fatalf("Expected the whole corpus, got %d", len(got))
	}
	for i := range got {
		if got[i].Slug != corpus[i].Slug {
			t.Errorf("Order changed at %d: got %s, want %s", i, got[i].Slug, corpus[i].Slug)
		}
	}
}
