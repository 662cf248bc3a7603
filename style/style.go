package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors of the active theme. SetTheme replaces them.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Error     lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Dim       lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
)

var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Header
	Title  lipgloss.Style
	Detail lipgloss.Style

	// Prompt
	PromptChar     lipgloss.Style
	PromptDisabled lipgloss.Style

	// Transcript
	UserLabel    lipgloss.Style
	BotLabel     lipgloss.Style
	SystemText   lipgloss.Style
	SpinnerStyle lipgloss.Style
	Separator    lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	ConnOK       lipgloss.Style
	ConnPending  lipgloss.Style
	ConnDown     lipgloss.Style
	ProgressText lipgloss.Style

	// Hint text (key help)
	Hint lipgloss.Style
)

func init() {
	apply(darkTheme)
}

func apply(t Theme) {
	CurrentThemeName = t.Name
	Primary, Secondary = t.Primary, t.Secondary
	Success, Warning, Error = t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border

	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	Title = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Detail = lipgloss.NewStyle().Foreground(Muted)

	PromptChar = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	PromptDisabled = lipgloss.NewStyle().Foreground(Dim)

	UserLabel = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	BotLabel = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	SystemText = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
	Separator = lipgloss.NewStyle().Foreground(Border)

	StatusBar = lipgloss.NewStyle().Foreground(Muted).PaddingLeft(1)
	ConnOK = lipgloss.NewStyle().Foreground(Success)
	ConnPending = lipgloss.NewStyle().Foreground(Warning)
	ConnDown = lipgloss.NewStyle().Foreground(Error)
	ProgressText = lipgloss.NewStyle().Foreground(Primary)

	Hint = lipgloss.NewStyle().Foreground(Dim)
}

// Rule renders a horizontal separator of the given width.
func Rule(width int) string {
	if width < 1 {
		width = 1
	}
	return Separator.Render(strings.Repeat("─", width))
}
