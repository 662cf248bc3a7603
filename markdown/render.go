package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is used when the caller does not know the terminal width yet.
const DefaultWidth = 100

var (
	mu        sync.Mutex
	renderers = map[int]*glamour.TermRenderer{}
)

// Render converts markdown text to styled ANSI output wrapped at width.
// Falls back to raw text if no renderer can be built.
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	mu.Lock()
	defer mu.Unlock()
	r := rendererFor(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour pads with blank lines; trim for inline display.
	return strings.Trim(out, "\n")
}

// rendererFor returns a cached renderer for width. Callers hold mu;
// glamour renderers are not safe for concurrent use.
func rendererFor(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if r, ok := renderers[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = r
	return r
}
