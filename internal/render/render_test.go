package render

import (
	"context"
	"strings"
	"testing"

	"github.com/mfigueira/folio/internal/cache"
)

func setupTest() {
	cache.ClearRenderedDocCache()
}

func TestRenderDocumentBasicNodes(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "headings",
			markdown: "# One\n\n## Two\n\n### Three\n\n#### Four\n",
			want:     []string{"<h1", ">One</h1>", "<h2", ">Two</h2>", "<h3", ">Three</h3>", "<h4", ">Four</h4>"},
		},
		{
			name:     "paragraph and emphasis",
			markdown: "Some *emphasized* prose.\n",
			want:     []string{"<p>", "<em>emphasized</em>"},
		},
		{
			name:     "unordered list",
			markdown: "- a\n- b\n",
			want:     []string{"<ul>", "<li>a</li>", "<li>b</li>"},
		},
		{
			name:     "ordered list",
			markdown: "1. first\n2. second\n",
			want:     []string{"<ol>", "<li>first</li>", "<li>second</li>"},
		},
		{
			name:     "block quote",
			markdown: "> quoted\n",
			want:     []string{"<blockquote>", "quoted"},
		},
		{
			name:     "horizontal rule",
			markdown: "above\n\n---\n\nbelow\n",
			want:     []string{"<hr>"},
		},
		{
			name:     "table",
			markdown: "| h1 | h2 |\n|----|----|\n| a | b |\n",
			want:     []string{"<table>", "<thead>", "<th>h1</th>", "<tbody>", "<td>a</td>"},
		},
		{
			name:     "inline code is escaped, not highlighted",
			markdown: "Use `<foo>` carefully.\n",
			want:     []string{"<code>&lt;foo&gt;</code>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := string(RenderDocument(context.Background(), []byte(tc.markdown)))
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Errorf("Output missing %q.\nOutput: %s", want, got)
				}
			}
		})
	}
}

func TestRenderDocumentLinks(t *testing.T) {
	got := string(RenderDocument(context.Background(),
		[]byte("[ext](https://example.com) and [int](/about)\n")))

	extIdx := strings.Index(got, `href="https://example.com"`)
	if extIdx == -1 {
		t.Fatalf("External link missing from output: %s", got)
	}
	extTag := got[strings.LastIndex(got[:extIdx], "<a"):]
	extTag = extTag[:strings.Index(extTag, ">")]
	for _, attr := range []string{`target="_blank"`, "noopener", "noreferrer"} {
		if !strings.Contains(extTag, attr) {
			t.Errorf("External link tag %q missing %q", extTag, attr)
		}
	}

	intIdx := strings.Index(got, `href="/about"`)
	if intIdx == -1 {
		t.Fatalf("Internal link missing from output: %s", got)
	}
	intTag := got[strings.LastIndex(got[:intIdx], "<a"):]
	intTag = intTag[:strings.Index(intTag, ">")]
	if strings.Contains(intTag, "_blank") || strings.Contains(intTag, "noreferrer") {
		t.Errorf("Internal link tag %q must not get external-link treatment", intTag)
	}
}

func TestRenderDocumentImages(t *testing.T) {
	got := string(RenderDocument(context.Background(),
		[]byte("![diagram](/img/d.png)\n")))

	for _, want := range []string{`src="/img/d.png"`, `alt="diagram"`, `width="1200"`, `height="630"`, `loading="lazy"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Image output missing %q.\nOutput: %s", want, got)
		}
	}
}

func TestRenderDocumentFencedCode(t *testing.T) {
	got := string(RenderDocument(context.Background(),
		[]byte("```go\nfmt.Println(\"hi\")\n```\n")))

	if !strings.Contains(got, `<div class="highlight">`) {
		t.Errorf("Expected a highlight wrapper.\nOutput: %s", got)
	}
	if !strings.Contains(got, "highlight-light") || !strings.Contains(got, "highlight-dark") {
		t.Errorf("Expected dual-theme markup.\nOutput: %s", got)
	}
}

func TestRenderDocumentUnsupportedLanguage(t *testing.T) {
	got := string(RenderDocument(context.Background(),
		[]byte("```brainfuck\n+++.\n```\n")))

	if !strings.Contains(got, `<div class="highlight">`) {
		t.Errorf("Unsupported language must still highlight via the text fallback.\nOutput: %s", got)
	}
}

func TestRenderDocumentFenceOrderPreserved(t *testing.T) {
	doc := "```python\nfirst_block\n```\n\n```go\nsecond_block\n```\n\n```python\nthird_block\n```\n"
	got := string(RenderDocument(context.Background(), []byte(doc)))

	first := strings.Index(got, "first_block")
	second := strings.Index(got, "second_block")
	third := strings.Index(got, "third_block")

	if first == -1 || second == -1 || third == -1 {
		t.Fatalf("Expected all three blocks in output.\nOutput: %s", got)
	}
	if !(first < second && second < third) {
		t.Errorf("Blocks out of source order: %d, %d, %d", first, second, third)
	}
}

func TestRenderDocumentEmpty(t *testing.T) {
	got := string(RenderDocument(context.Background(), nil))
	if strings.Contains(got, "document-fallback") {
		t.Errorf("Empty input should not degrade: %s", got)
	}
}

func TestDegradedDocument(t *testing.T) {
	got := string(DegradedDocument([]byte("# raw <script>alert(1)</script>")))

	if !strings.HasPrefix(got, `<pre class="document-fallback">`) {
		t.Errorf("Expected a preformatted fallback block, got %s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Error("Degraded output must escape the raw document")
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Error("Expected the raw text to survive, escaped")
	}
}

func TestRenderDocumentCached(t *testing.T) {
	setupTest()

	doc := []byte("# Cached\n\nbody\n")

	first := RenderDocumentCached(context.Background(), doc, "hash-1")
	if _, found := cache.GetRenderedDoc("hash-1"); !found {
		t.Fatal("Expected the rendered document to be cached")
	}

	second := RenderDocumentCached(context.Background(), doc, "hash-1")
	if first != second {
		t.Error("Cache hit returned different content")
	}
}

func TestRenderDocumentCachedEmptyHash(t *testing.T) {
	setupTest()

	got := RenderDocumentCached(context.Background(), []byte("# T\n"), "")
	if !strings.Contains(string(got), "<h1") {
		t.Errorf("Rendering without a hash must still work: %s", got)
	}
}
