package highlight

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Extensions is the parser feature set shared by the fence extractor and the
// document renderer. Both sides must parse identically or extracted cache
// keys would not match the keys rebuilt during the tree walk.
const Extensions = parser.Tables | parser.FencedCode | parser.Autolink |
	parser.Strikethrough | parser.SpaceHeadings | parser.HeadingIDs |
	parser.AutoHeadingIDs | parser.BackslashLineBreak | parser.DefinitionLists |
	parser.MathJax | parser.Footnotes | parser.OrderedListStart |
	parser.SuperSubscript | parser.Attributes | parser.NonBlockingSpace

// Fence is one fenced code block lifted out of a document. It lives only for
// the render call that extracted it.
type Fence struct {
	// Lang is the lower-cased info string, FallbackLanguage when absent.
	Lang string
	// Code is the block body with exactly one trailing newline trimmed.
	Code string
	// Key is the literal fence reconstruction used as the cache key.
	Key string
}

// NewFence builds a Fence from a code block's raw info string and body text.
// The renderer derives lookup keys through here as well, so extraction and
// lookup always agree byte for byte.
func NewFence(info, body string) Fence {
	body = strings.TrimSuffix(body, "\n")

	lang := strings.ToLower(strings.TrimSpace(info))
	if lang == "" {
		lang = FallbackLanguage
	}

	return Fence{
		Lang: lang,
		Code: body,
		Key:  FenceKey(info, body),
	}
}

// FenceKey rebuilds the literal fenced-block text for a raw info string and
// an already-trimmed body.
func FenceKey(info, body string) string {
	return "```" + info + "\n" + body + "\n```"
}

// ExtractFences returns every fenced code block of a document in source
// order. Fences come out of a real markdown parse rather than a regex
// pre-pass, so unterminated or nested constructs are resolved exactly the
// way the renderer will resolve them. Duplicate fences are all returned;
// their identical keys collapse in the cache.
func ExtractFences(doc []byte) []Fence {
	doc = markdown.NormalizeNewlines(doc)
	root := parser.NewWithExtensions(Extensions).Parse(doc)
	return FencesFromTree(root)
}

// FencesFromTree collects fences from an already-parsed document tree.
func FencesFromTree(root ast.Node) []Fence {
	var fences []Fence
	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		if code, ok := node.(*ast.CodeBlock); ok && entering && code.IsFenced {
			fences = append(fences, NewFence(string(code.Info), string(code.Literal)))
		}
		return ast.GoToNext
	})
	return fences
}
