package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/style"
)

const progressWidth = 20

// StatusModel renders the bottom status line:
//
//	● connected · adk · 3f9c21ab        ██████░░░░ 12 words · 24%
//
// It is driven entirely by setter calls.
type StatusModel struct {
	conn      chat.ConnState
	kind      chat.Kind
	sessionID string
	words     int
	percent   int
	streaming bool
	bar       progress.Model
}

func NewStatus() StatusModel {
	return StatusModel{
		conn: chat.ConnConnecting,
		bar:  newBar(),
	}
}

func newBar() progress.Model {
	t := style.Current()
	return progress.New(
		progress.WithGradient(t.ProgressFrom, t.ProgressTo),
		progress.WithWidth(progressWidth),
		progress.WithoutPercentage(),
	)
}

func (m *StatusModel) SetConnection(state chat.ConnState) { m.conn = state }

func (m *StatusModel) SetSession(id chat.Identity) {
	m.kind = id.Kind
	m.sessionID = id.SessionID
}

func (m *StatusModel) SetProgress(words, percent int) {
	m.words = words
	m.percent = percent
}

func (m *StatusModel) SetStreaming(on bool) { m.streaming = on }

// RestyleBar picks up the gradient of a newly selected theme.
func (m *StatusModel) RestyleBar() { m.bar = newBar() }

func (m StatusModel) Connection() chat.ConnState { return m.conn }

// View renders left and right halves padded to width.
func (m StatusModel) View(width int) string {
	left := m.connDot() + style.StatusBar.Render(string(m.conn))
	if m.kind != "" {
		left += style.Faint.Render(" · " + string(m.kind) + " · " + shortID(m.sessionID))
	}
	if m.streaming {
		left += style.Faint.Render(" · replying")
	}

	right := m.bar.ViewAs(float64(m.percent)/100) +
		style.ProgressText.Render(fmt.Sprintf(" %d words · %d%%", m.words, m.percent))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m StatusModel) connDot() string {
	switch m.conn {
	case chat.ConnConnected:
		return style.ConnOK.Render(" ●")
	case chat.ConnDisconnected:
		return style.ConnDown.Render(" ●")
	default:
		return style.ConnPending.Render(" ○")
	}
}

// shortID truncates an id to 8 characters for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
