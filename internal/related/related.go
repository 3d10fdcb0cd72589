// Package related ranks posts against a reference post by shared-tag count.
package related

import (
	"slices"

	"github.com/mfigueira/folio/internal/model"
)

// DefaultLimit matches the number of related posts a detail page shows.
const DefaultLimit = 3

// Posts scores every other post in the corpus by the number of tags it
// shares with ref and returns the top matches, most relevant first. Posts
// sharing no tags are excluded outright, as is ref itself (by slug). A
// reference post with no tags has no computable relevance and yields nil.
//
// Ties on relevance break toward the most recently published post, so the
// ordering is deterministic for a given corpus.
func Posts(ref model.Post, corpus []model.Post, limit int) []model.Post {
	if limit <= 0 {
		limit = DefaultLimit
	}

	refTags := ref.TagSet()
	if len(refTags) == 0 {
		return nil
	}

	var ranked []model.Post
	for _, candidate := range corpus {
		if candidate.Slug == ref.Slug {
			continue
		}

		score := overlap(refTags, candidate.TagSet())
		if score == 0 {
			continue
		}

		candidate.Relevance = score
		ranked = append(ranked, candidate)
	}

	slices.SortStableFunc(ranked, func(a, b model.Post) int {
		if a.Relevance != b.Relevance {
			return b.Relevance - a.Relevance
		}
		return -a.PublishedDate.Compare(b.PublishedDate)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// overlap is the intersection size of two tag sets. Sets, not multisets:
// duplicate tags on either side never inflate the score.
func overlap(a, b map[string]struct{}) int {
	n := 0
	for tag := range b {
		if _, ok := a[tag]; ok {
			n++
		}
	}
	return n
}
