package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/style"
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
	errorTTL  = 8 * time.Second
)

type toast struct {
	message  string
	severity chat.Severity
	expiry   time.Time
}

// ToastsModel manages a queue of auto-dismissing notices.
type ToastsModel struct {
	queue []toast
	now   func() time.Time
}

func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

// Add enqueues a notice. Errors stay up longer. Oldest notices are dropped
// past maxToasts.
func (m *ToastsModel) Add(message string, severity chat.Severity) {
	ttl := toastTTL
	if severity == chat.SeverityError {
		ttl = errorTTL
	}
	m.queue = append(m.queue, toast{
		message:  message,
		severity: severity,
		expiry:   m.now().Add(ttl),
	})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

// Tick prunes expired notices. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.now()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

func (m ToastsModel) Len() int { return len(m.queue) }

// View renders visible notices as right-aligned colored lines.
func (m ToastsModel) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.queue))
	for _, t := range m.queue {
		icon, color := toastIconColor(t.severity)
		rendered := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf(" %s %s ", icon, t.message))
		pad := termWidth - lipgloss.Width(rendered)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func toastIconColor(s chat.Severity) (string, lipgloss.TerminalColor) {
	switch s {
	case chat.SeverityWarning:
		return "⚠", style.Warning
	case chat.SeverityError:
		return "✘", style.Error
	case chat.SeveritySuccess:
		return "✓", style.Success
	default:
		return "ℹ", style.Secondary
	}
}
