package chat

import (
	"github.com/miosa/lingo-tui/client"
)

const thinkingSuffix = "..."

// streamState is the per-exchange state threaded through the stream loop.
// content is the permanent reply; thinking previews never enter it.
type streamState struct {
	content string
	settled bool
}

// effect is one visible consequence of a stream event. step produces them;
// the orchestrator performs them.
type effect interface{ isEffect() }

type renderBot struct{ content string }
type showTyping struct{ visible bool }
type settle struct{}
type replaceSession struct{ sessionID, userID string }
type notice struct {
	text     string
	severity Severity
}
type appendBot struct{ content string }

// learnWords feeds the progress counter. With explicit set, count is the
// backend's figure; otherwise text is estimated.
type learnWords struct {
	explicit bool
	count    int
	text     string
}

func (renderBot) isEffect()      {}
func (showTyping) isEffect()     {}
func (settle) isEffect()         {}
func (replaceSession) isEffect() {}
func (notice) isEffect()         {}
func (appendBot) isEffect()      {}
func (learnWords) isEffect()     {}

// step applies one event to the stream state.
func step(st streamState, ev client.Event) (streamState, []effect) {
	switch ev := ev.(type) {
	case client.SessionUpdateEvent:
		return st, []effect{
			replaceSession{sessionID: ev.SessionID, userID: ev.UserID},
			notice{text: "Session updated.", severity: SeverityInfo},
		}

	case client.ThinkingEvent:
		return st, []effect{renderBot{content: st.content + ev.Text + thinkingSuffix}}

	case client.ChunkEvent:
		st.content += ev.Text
		return st, []effect{
			renderBot{content: st.content},
			showTyping{visible: false},
		}

	case client.CompleteEvent:
		effects := []effect{showTyping{visible: false}, settle{}}
		st.settled = true
		if ev.FullResponse != "" {
			st.content = ev.FullResponse
			effects = append(effects, renderBot{content: st.content})
		}
		switch {
		case ev.WordCount != nil && *ev.WordCount > 0:
			effects = append(effects, learnWords{explicit: true, count: *ev.WordCount})
		case len(ev.EnglishWords) > 0:
			effects = append(effects, learnWords{explicit: true, count: len(ev.EnglishWords)})
		default:
			effects = append(effects, learnWords{text: st.content})
		}
		return st, effects

	case client.ErrorEvent:
		st.settled = true
		msg := ev.Message
		if msg == "" {
			msg = "unknown error"
		}
		return st, []effect{
			showTyping{visible: false},
			settle{},
			appendBot{content: "Sorry, something went wrong: " + msg},
			notice{text: msg, severity: SeverityError},
		}
	}
	// Unknown kinds are ignored.
	return st, nil
}
