package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/lingo-tui/style"
)

// InputModel is the prompt line. Up/Down walk the history of sent lines;
// Tab completes a leading "/" against the command list. While disabled the
// prompt dims and keys still edit the buffer, so the next message can be
// typed during a reply.
type InputModel struct {
	ti       textinput.Model
	enabled  bool
	history  []string
	cursor   int // len(history) when not navigating
	commands []string
	matches  []string
	matchIdx int
}

func NewInput() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Write in English… (/help for commands)"
	ti.CharLimit = 2000
	ti.Prompt = ""
	return InputModel{ti: ti, enabled: true, matchIdx: -1}
}

func (m *InputModel) SetCommands(cmds []string) { m.commands = cmds }

func (m *InputModel) SetWidth(w int) {
	if w > 4 {
		m.ti.Width = w - 4
	}
}

func (m *InputModel) Focus() tea.Cmd { return m.ti.Focus() }

func (m InputModel) Value() string { return m.ti.Value() }

func (m *InputModel) SetValue(s string) {
	m.ti.SetValue(s)
	m.ti.CursorEnd()
}

func (m *InputModel) SetEnabled(on bool) { m.enabled = on }

func (m InputModel) Enabled() bool { return m.enabled }

// Remember records a sent line for history navigation.
func (m *InputModel) Remember(text string) {
	text = strings.TrimSpace(text)
	if text != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != text) {
		m.history = append(m.history, text)
	}
	m.cursor = len(m.history)
}

// Clear empties the field without touching history.
func (m *InputModel) Clear() {
	m.ti.SetValue("")
	m.cursor = len(m.history)
	m.matches, m.matchIdx = nil, -1
}

func (m InputModel) Init() tea.Cmd { return nil }

func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			m.walk(-1)
			return m, nil
		case tea.KeyDown:
			m.walk(+1)
			return m, nil
		case tea.KeyTab:
			m.complete()
			return m, nil
		default:
			m.matches, m.matchIdx = nil, -1
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	prompt := style.PromptChar.Render("❯ ")
	if !m.enabled {
		prompt = style.PromptDisabled.Render("… ")
	}
	return prompt + m.ti.View()
}

func (m *InputModel) walk(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.history) {
		m.cursor = len(m.history)
		m.ti.SetValue("")
		return
	}
	m.SetValue(m.history[m.cursor])
}

func (m *InputModel) complete() {
	cur := m.ti.Value()
	if !strings.HasPrefix(cur, "/") {
		return
	}
	if m.matches == nil {
		for _, c := range m.commands {
			if strings.HasPrefix(c, cur) {
				m.matches = append(m.matches, c)
			}
		}
		if len(m.matches) == 0 {
			return
		}
		m.matchIdx = 0
	} else {
		m.matchIdx = (m.matchIdx + 1) % len(m.matches)
	}
	m.SetValue(m.matches[m.matchIdx])
}
