package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_BlankPassesThrough(t *testing.T) {
	assert.Equal(t, "", Render("", 80))
	assert.Equal(t, "  \n", Render("  \n", 80))
}

func TestRender_KeepsText(t *testing.T) {
	out := Render("Try the word **serendipity** today.", 60)
	assert.Contains(t, out, "serendipity")
}

func TestRender_CachesPerWidth(t *testing.T) {
	Render("a", 40)
	Render("b", 40)
	Render("c", 0)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, renderers, 40)
	assert.Contains(t, renderers, DefaultWidth)
}
