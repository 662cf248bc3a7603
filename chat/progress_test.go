package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a an the cat", 0},
		{"Hi there", 1},
		{"word-play, don't", 2},
		{"apple banana cherry grape lemon mango peach", 5},
		{"über café naïve", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateWords(tt.text), tt.text)
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress()
	assert.Equal(t, 5, p.AddEstimate("one three seven eleven twelve thirteen"))
	assert.Equal(t, 12, p.AddExplicit(12))
	assert.Zero(t, p.AddExplicit(-4))
	assert.Equal(t, 17, p.Total())
	assert.Equal(t, 34, p.Percent())

	p.AddExplicit(40)
	assert.Equal(t, 100, p.Percent())
}

func TestPercentFor(t *testing.T) {
	assert.Equal(t, 0, PercentFor(0))
	assert.Equal(t, 98, PercentFor(49))
	assert.Equal(t, 100, PercentFor(50))
	assert.Equal(t, 100, PercentFor(500))
}
