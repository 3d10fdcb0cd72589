// Package highlight owns the shared syntax-highlighting engine, the fence
// extractor and the per-render highlight cache.
package highlight

import (
	"context"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"

	"github.com/mfigueira/folio/internal/config"
)

var hlLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	hlLogger = l
}

// FallbackLanguage is substituted when a fence names a grammar that was not
// preloaded, or names none at all.
const FallbackLanguage = "text"

// preloadLanguages is the fixed grammar set loaded at construction time.
var preloadLanguages = []string{
	"bash", "c", "cpp", "css", "diff", "dockerfile", "go", "html", "java",
	"javascript", "json", "makefile", "markdown", "python", "ruby", "rust",
	"sql", "text", "toml", "typescript", "yaml",
}

// Highlighter is the process-wide engine: preloaded grammars plus the light
// and dark styles. It is read-only after construction and safe for arbitrary
// concurrent use.
type Highlighter struct {
	lexers    map[string]chroma.Lexer
	light     *chroma.Style
	dark      *chroma.Style
	formatter *chromahtml.Formatter
}

type buildState struct {
	done chan struct{}
	h    *Highlighter
	err  error
}

var (
	mu      sync.Mutex
	shared  *Highlighter
	pending *buildState
)

// Get returns the shared highlighter, constructing it on first use.
// Concurrent callers during construction all wait on the same in-flight
// build. A failed build is not memoized: the next caller re-attempts, so a
// transient failure never poisons the process.
func Get(ctx context.Context) (*Highlighter, error) {
	mu.Lock()
	if shared != nil {
		h := shared
		mu.Unlock()
		return h, nil
	}

	state := pending
	if state == nil {
		state = &buildState{done: make(chan struct{})}
		pending = state
		go func() {
			h, err := build()

			mu.Lock()
			if err == nil {
				shared = h
			}
			pending = nil
			mu.Unlock()

			state.h, state.err = h, err
			close(state.done)
		}()
	}
	mu.Unlock()

	select {
	case <-state.done:
		return state.h, state.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func build() (*Highlighter, error) {
	lightName, darkName := styleNames()

	h := &Highlighter{
		lexers:    make(map[string]chroma.Lexer, len(preloadLanguages)),
		light:     styles.Get(lightName),
		dark:      styles.Get(darkName),
		formatter: chromahtml.New(chromahtml.TabWidth(4), chromahtml.WrapLongLines(true)),
	}

	for _, name := range preloadLanguages {
		lexer := lexers.Get(name)
		if lexer == nil {
			hlLogger.Warn().Str("language", name).Msg("Grammar not available, skipping")
			continue
		}
		h.lexers[name] = chroma.Coalesce(lexer)
	}

	if _, ok := h.lexers[FallbackLanguage]; !ok {
		h.lexers[FallbackLanguage] = chroma.Coalesce(lexers.Fallback)
	}

	hlLogger.Debug().
		Int("languages", len(h.lexers)).
		Str("light_style", lightName).
		Str("dark_style", darkName).
		Msg("Highlighter constructed")

	return h, nil
}

func styleNames() (light, dark string) {
	if c := config.AppConfig; c != nil {
		return c.Theme.SyntaxHighlighting.LightStyle, c.Theme.SyntaxHighlighting.DarkStyle
	}
	return config.DefaultLightSyntaxStyle, config.DefaultDarkSyntaxStyle
}

// HasLanguage reports whether a grammar was preloaded for lang.
func (h *Highlighter) HasLanguage(lang string) bool {
	_, ok := h.lexers[strings.ToLower(lang)]
	return ok
}

// Highlight renders code for both the light and the dark style in a single
// call: the source is tokenised once and the token stream is formatted twice.
// The page CSS shows the variant matching the active site theme.
func (h *Highlighter) Highlight(code, language string) (string, error) {
	lexer, ok := h.lexers[strings.ToLower(language)]
	if !ok {
		lexer = h.lexers[FallbackLanguage]
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	tokens := iterator.Tokens()

	var buf strings.Builder
	buf.WriteString(`<div class="highlight-light">`)
	if err := h.formatter.Format(&buf, h.light, chroma.Literator(tokens...)); err != nil {
		return "", err
	}
	buf.WriteString(`</div><div class="highlight-dark">`)
	if err := h.formatter.Format(&buf, h.dark, chroma.Literator(tokens...)); err != nil {
		return "", err
	}
	buf.WriteString(`</div>`)

	return buf.String(), nil
}
