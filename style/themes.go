package style

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color palette for the TUI.
type Theme struct {
	Name                                        string
	Primary, Secondary, Success, Warning, Error lipgloss.TerminalColor
	Muted, Dim, Border                          lipgloss.TerminalColor
	// ProgressFrom and ProgressTo are the ends of the learning bar gradient.
	ProgressFrom, ProgressTo string
}

// Built-in themes.
var (
	darkTheme = Theme{
		Name:         "dark",
		Primary:      lipgloss.Color("#14B8A6"), // teal-500
		Secondary:    lipgloss.Color("#38BDF8"), // sky-400
		Success:      lipgloss.Color("#22C55E"),
		Warning:      lipgloss.Color("#F59E0B"),
		Error:        lipgloss.Color("#EF4444"),
		Muted:        lipgloss.Color("#6B7280"),
		Dim:          lipgloss.Color("#374151"),
		Border:       lipgloss.Color("#4B5563"),
		ProgressFrom: "#0D9488",
		ProgressTo:   "#A3E635",
	}

	lightTheme = Theme{
		Name:         "light",
		Primary:      lipgloss.Color("#0F766E"), // teal-700
		Secondary:    lipgloss.Color("#0369A1"), // sky-700
		Success:      lipgloss.Color("#16A34A"),
		Warning:      lipgloss.Color("#D97706"),
		Error:        lipgloss.Color("#DC2626"),
		Muted:        lipgloss.Color("#9CA3AF"),
		Dim:          lipgloss.Color("#D1D5DB"),
		Border:       lipgloss.Color("#9CA3AF"),
		ProgressFrom: "#0F766E",
		ProgressTo:   "#65A30D",
	}

	catppuccinTheme = Theme{
		Name:         "catppuccin",
		Primary:      lipgloss.Color("#94E2D5"), // teal
		Secondary:    lipgloss.Color("#89DCEB"), // sky
		Success:      lipgloss.Color("#A6E3A1"),
		Warning:      lipgloss.Color("#F9E2AF"),
		Error:        lipgloss.Color("#F38BA8"),
		Muted:        lipgloss.Color("#6C7086"),
		Dim:          lipgloss.Color("#45475A"),
		Border:       lipgloss.Color("#585B70"),
		ProgressFrom: "#94E2D5",
		ProgressTo:   "#A6E3A1",
	}
)

// Themes maps theme names to their definitions.
var Themes = map[string]Theme{
	"dark":       darkTheme,
	"light":      lightTheme,
	"catppuccin": catppuccinTheme,
}

// ThemeNames lists available themes in display order.
var ThemeNames = []string{"dark", "light", "catppuccin"}

// CurrentThemeName tracks the active theme name.
var CurrentThemeName = "dark"

// SetTheme switches the palette and rebuilds every style. Unknown names are
// ignored and reported as false.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	apply(t)
	return true
}

// Current returns the active theme.
func Current() Theme {
	return Themes[CurrentThemeName]
}
