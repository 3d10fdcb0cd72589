package related

import (
	"testing"
	"time"

	"github.com/mfigueira/folio/internal/model"
)

func post(slug string, published time.Time, tags ...string) model.Post {
	return model.Post{
		Slug:          slug,
		Title:         slug,
		PublishedDate: published,
		Tags:          tags,
	}
}

func TestPostsRanking(t *testing.T) {
	now := time.Now().UTC()

	ref := post("ref", now, "react", "testing")
	corpus := []model.Post{
		ref,
		post("a", now.Add(-48*time.Hour), "react", "css"),
		post("b", now.Add(-24*time.Hour), "react", "testing", "ci"),
		post("c", now, "vue"),
	}

	got := Posts(ref, corpus, 3)

	if len(got) != 2 {
		t.Fatalf("Expected 2 related posts, got %d: %+v", len(got), got)
	}
	if got[0].Slug != "b" || got[1].Slug != "a" {
		t.Errorf("Expected order [b a], got [%s %s]", got[0].Slug, got[1].Slug)
	}
	if got[0].Relevance != 2 {
		t.Errorf("Expected relevance 2 for b, got %d", got[0].Relevance)
	}
	if got[1].Relevance != 1 {
		t.Errorf("Expected relevance 1 for a, got %d", got[1].Relevance)
	}
}

func TestPostsExcludesReference(t *testing.T) {
	now := time.Now().UTC()
	ref := post("ref", now, "go")
	corpus := []model.Post{ref, post("other", now, "go")}

	got := Posts(ref, corpus, 5)
	for _, p := range got {
		if p.Slug == "ref" {
			t.Error("Reference post must never appear in its own related list")
		}
	}
}

func TestPostsNoTagsShortCircuits(t *testing.T) {
	now := time.Now().UTC()
	ref := post("ref", now)
	corpus := []model.Post{post("a", now, "go"), post("b", now, "rust")}

	if got := Posts(ref, corpus, 3); len(got) != 0 {
		t.Errorf("Expected empty result for untagged reference, got %+v", got)
	}
}

func TestPostsZeroRelevanceExcluded(t *testing.T) {
	now := time.Now().UTC()
	ref := post("ref", now, "go", "testing")
	corpus := []model.Post{post("unrelated", now, "cooking", "travel")}

	if got := Posts(ref, corpus, 3); len(got) != 0 {
		t.Errorf("Posts sharing no tags must be excluded, got %+v", got)
	}
}

func TestPostsDuplicateTagsDoNotInflate(t *testing.T) {
	now := time.Now().UTC()
	ref := post("ref", now, "go", "go", "go")
	corpus := []model.Post{
		post("a", now.Add(-time.Hour), "go", "go"),
		post("b", now, "go", "testing"),
	}

	got := Posts(ref, corpus, 3)
	if len(got) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got))
	}
	for _, p := range got {
		if p.Relevance != 1 {
			t.Errorf("Expected relevance 1 for %s (set intersection), got %d", p.Slug, p.Relevance)
		}
	}
	// Equal relevance: the most recently published candidate wins.
	if got[0].Slug != "b" {
		t.Errorf("Expected tie to break toward the newer post, got %s first", got[0].Slug)
	}
}

func TestPostsLimit(t *testing.T) {
	now := time.Now().UTC()
	ref := post("ref", now, "go")

	var corpus []model.Post
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		corpus = append(corpus, post(slug, now, "go"))
	}

	if got := Posts(ref, corpus, 2); len(got) != 2 {
		t.Errorf("Expected results truncated to 2, got %d", len(got))
	}

	// A non-positive limit falls back to the default.
	if got := Posts(ref, corpus, 0); len(got) != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, len(got))
	}
}
