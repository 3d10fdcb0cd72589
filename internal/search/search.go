// Package search implements free-text filtering over the post corpus:
// case- and diacritic-insensitive substring matching plus category filtering.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mfigueira/folio/internal/config"
	"github.com/mfigueira/folio/internal/model"
)

// MaxQueryLength caps free-text queries. Anything longer is treated as no
// filter at all rather than an error.
const MaxQueryLength = 100

func maxQueryLength() int {
	if c := config.AppConfig; c != nil && c.Search.MaxQueryLength > 0 {
		return c.Search.MaxQueryLength
	}
	return MaxQueryLength
}

// stripMarks decomposes text and drops the combining marks, so "café"
// compares equal to "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases text and removes diacritical marks. Both sides of a
// match go through here, so "Programación" and "programacion" are equivalent.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// Transform failures leave the lower-cased text as-is; matching is
		// then merely accent-sensitive for this value.
		return strings.ToLower(s)
	}
	return out
}

// Matches reports whether the normalized query is a substring of any of the
// post's searchable fields: title, excerpt, body (when loaded) and each tag.
func Matches(post model.Post, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}

	if strings.Contains(Normalize(post.Title), normalizedQuery) {
		return true
	}
	if strings.Contains(Normalize(post.Excerpt), normalizedQuery) {
		return true
	}
	if post.HasBody() && strings.Contains(Normalize(string(post.Markdown)), normalizedQuery) {
		return true
	}
	for _, tag := range post.Tags {
		if strings.Contains(Normalize(tag), normalizedQuery) {
			return true
		}
	}
	return false
}

// Filter applies the free-text query and the category slug to the corpus,
// preserving corpus order. The two filters are independent and combine as a
// logical AND. A query over MaxQueryLength runes applies no text filter.
func Filter(corpus []model.Post, query, categorySlug string) []model.Post {
	query = strings.TrimSpace(query)
	if len([]rune(query)) > maxQueryLength() {
		query = ""
	}
	normalizedQuery := Normalize(query)

	out := make([]model.Post, 0, len(corpus))
	for _, post := range corpus {
		if categorySlug != "" {
			if post.Category == nil || post.Category.Slug != categorySlug {
				continue
			}
		}
		if !Matches(post, normalizedQuery) {
			continue
		}
		out = append(out, post)
	}
	return out
}
