package chat

import (
	"regexp"
	"sync"
)

// maxEstimatedWords caps what one reply can add when the count is estimated,
// so a single long reply cannot fill the bar.
const maxEstimatedWords = 5

var wordPattern = regexp.MustCompile(`[A-Za-z]{4,}`)

// EstimateWords counts alphabetic runs of four or more letters in text,
// capped at maxEstimatedWords.
func EstimateWords(text string) int {
	n := len(wordPattern.FindAllStringIndex(text, -1))
	if n > maxEstimatedWords {
		return maxEstimatedWords
	}
	return n
}

// Progress is the vocabulary counter. It lives for one run of the program.
type Progress struct {
	mu    sync.Mutex
	total int
}

func NewProgress() *Progress {
	return &Progress{}
}

// AddExplicit adds a backend-reported word count, uncapped.
func (p *Progress) AddExplicit(count int) int {
	if count < 0 {
		count = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total += count
	return count
}

// AddEstimate adds the estimate for text and returns the increment.
func (p *Progress) AddEstimate(text string) int {
	n := EstimateWords(text)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total += n
	return n
}

func (p *Progress) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Percent maps the total onto the progress bar: two points per word, max 100.
func (p *Progress) Percent() int {
	return PercentFor(p.Total())
}

func PercentFor(total int) int {
	pct := total * 2
	if pct > 100 {
		return 100
	}
	return pct
}
