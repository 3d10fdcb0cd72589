package highlight

import (
	"context"
	"fmt"
	"html"
	"sync"

	"golang.org/x/sync/errgroup"
)

// concurrency cap for the per-document highlight fan-out.
const maxConcurrentFences = 8

// BuildCache highlights every fence concurrently and returns a map from the
// literal fence text to its markup. The map is rebuilt for every render call
// and never shared across documents.
//
// Failures degrade per fence: a block that cannot be highlighted gets the
// escaped plaintext fallback while its siblings render normally. If the
// engine itself cannot be constructed, every fence falls back.
func BuildCache(ctx context.Context, fences []Fence) map[string]string {
	out := make(map[string]string, len(fences))
	if len(fences) == 0 {
		return out
	}

	h, err := Get(ctx)
	if err != nil {
		hlLogger.Debug().Err(err).Msg("Highlighter unavailable, using plain code blocks")
		for _, fence := range fences {
			out[fence.Key] = FallbackBlock(fence.Lang, fence.Code)
		}
		return out
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentFences)

	for _, fence := range fences {
		fence := fence
		g.Go(func() error {
			markup, err := h.Highlight(fence.Code, fence.Lang)
			if err != nil {
				hlLogger.Debug().Err(err).Str("lang", fence.Lang).Msg("Fence highlight failed")
				markup = FallbackBlock(fence.Lang, fence.Code)
			}

			mu.Lock()
			out[fence.Key] = markup
			mu.Unlock()
			return nil
		})
	}

	// Goroutines handle their own fallbacks, so there is no error to join.
	_ = g.Wait()

	return out
}

// FallbackBlock is the minimal escaped representation of a code block, used
// whenever highlighting is unavailable for it.
func FallbackBlock(lang, code string) string {
	return fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>",
		html.EscapeString(lang), html.EscapeString(code))
}
