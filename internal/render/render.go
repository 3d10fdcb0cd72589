// Package render converts stored markdown documents into presentation-ready
// HTML, substituting pre-highlighted markup for fenced code blocks.
package render

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mfigueira/folio/internal/cache"
	"github.com/mfigueira/folio/internal/config"
	"github.com/mfigueira/folio/internal/highlight"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// RenderDocument renders a full markdown document. Fenced code blocks are
// highlighted concurrently up front; the tree walk then re-imposes source
// order by looking each block up in the content-keyed cache. A document the
// parser cannot handle degrades to its escaped source text instead of an
// error page.
func RenderDocument(ctx context.Context, doc []byte) template.HTML {
	doc = markdown.NormalizeNewlines(doc)

	out, err := renderTree(ctx, doc)
	if err != nil {
		renderLogger.Debug().Err(err).Msg("Document parse failed, serving escaped source")
		return DegradedDocument(doc)
	}

	return template.HTML(out)
}

func renderTree(ctx context.Context, doc []byte) (out []byte, err error) {
	// gomarkdown signals malformed input by panicking deep in the parser.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown parse: %v", r)
		}
	}()

	root := parser.NewWithExtensions(highlight.Extensions).Parse(doc)
	hlCache := highlight.BuildCache(ctx, highlight.FencesFromTree(root))

	return markdown.Render(root, newRenderer(hlCache)), nil
}

// Mutex to protect the check-render-set operation in RenderDocumentCached
var renderCacheMutex sync.Mutex

// RenderDocumentCached is RenderDocument behind the process-wide rendered
// document cache. Highlighted markup embeds both theme variants, so the
// content hash alone keys the entry.
func RenderDocumentCached(ctx context.Context, doc []byte, contentHash string) template.HTML {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return RenderDocument(ctx, doc)
	}

	// First check cache without locking (fast path for cache hits)
	if cached, found := cache.GetRenderedDoc(contentHash); found {
		renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache hit for rendered document")
		return template.HTML(cached)
	}

	renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache miss for rendered document")
	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	rendered := RenderDocument(ctx, doc)
	cache.SetRenderedDoc(contentHash, []byte(rendered))

	return rendered
}

// WarmCache pre-renders a document asynchronously to warm the cache.
func WarmCache(doc []byte, contentHash string) {
	go func() {
		RenderDocumentCached(context.Background(), doc, contentHash)
		renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache warming completed")
	}()
}

// DegradedDocument is the whole-document fallback: the raw source, escaped
// and preformatted, so the reader still sees complete content.
func DegradedDocument(doc []byte) template.HTML {
	return template.HTML(`<pre class="document-fallback">` + html.EscapeString(string(doc)) + `</pre>`)
}

func newRenderer(hlCache map[string]string) *md_html.Renderer {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank |
			md_html.NoreferrerLinks | md_html.NoopenerLinks |
			md_html.FootnoteReturnLinks,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			switch n := node.(type) {
			case *ast.CodeBlock:
				if entering {
					renderCodeBlock(w, n, hlCache)
				}
				return ast.GoToNext, true
			case *ast.Image:
				if !entering {
					return ast.GoToNext, true
				}
				return renderImage(w, n), true
			}
			return ast.GoToNext, false
		},
	}

	return md_html.NewRenderer(opts)
}

func renderCodeBlock(w io.Writer, code *ast.CodeBlock, hlCache map[string]string) {
	fence := highlight.NewFence(string(code.Info), string(code.Literal))

	if code.IsFenced {
		// The highlighter produced this markup, so it is trusted as-is; the
		// trust boundary is the engine, not the post author.
		if markup, ok := hlCache[fence.Key]; ok {
			fmt.Fprintf(w, `<div class="highlight">%s</div>`, markup)
			return
		}
		renderLogger.Debug().Str("lang", fence.Lang).Msg("Highlight cache miss for fence")
	}

	io.WriteString(w, highlight.FallbackBlock(fence.Lang, fence.Code))
}

// renderImage emits explicit dimensions so pages never shift when the asset
// arrives. Authors can override via block attributes; otherwise the site
// defaults apply.
func renderImage(w io.Writer, img *ast.Image) ast.WalkStatus {
	width, height := config.ImageDefaultWidth, config.ImageDefaultHeight
	if attr := img.Attribute; attr != nil {
		if v, err := strconv.Atoi(string(attr.Attrs["width"])); err == nil && v > 0 {
			width = v
		}
		if v, err := strconv.Atoi(string(attr.Attrs["height"])); err == nil && v > 0 {
			height = v
		}
	}

	fmt.Fprintf(w, `<img src="%s" alt="%s" width="%d" height="%d" loading="lazy" decoding="async">`,
		html.EscapeString(string(img.Destination)),
		html.EscapeString(childText(img)),
		width, height)

	return ast.SkipChildren
}

func childText(node ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if leaf := n.AsLeaf(); leaf != nil && entering {
			b.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return b.String()
}
