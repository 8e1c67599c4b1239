// Package ui provides the visual styling and rendering helpers shared by the
// pokedex CLI output and the interactive browser.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pokédex palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#fafafa")
	LightForeground = lipgloss.Color("#222224")
	LightPrimary    = lipgloss.Color("#dc0a2d") // Pokédex red
	LightAccent     = lipgloss.Color("#3b4cca") // Blue
	LightSecondary  = lipgloss.Color("#ececec")
	LightMuted      = lipgloss.Color("#8a8a8f")
	LightBorder     = lipgloss.Color("#d6d6d6")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#1b1b1f")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#ff5a5f") // Lighter red for contrast
	DarkAccent     = lipgloss.Color("#ffcb05") // Yellow
	DarkSecondary  = lipgloss.Color("#2a2a30")
	DarkMuted      = lipgloss.Color("#7c7c85")
	DarkBorder     = lipgloss.Color("#3a3a42")
	DarkCard       = lipgloss.Color("#24242a")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#4caf50")
	Warning     = lipgloss.Color("#ffc107")
	Info        = lipgloss.Color("#2196f3")
)

// TypeColors maps pokemon type names to badge colors.
var TypeColors = map[string]lipgloss.Color{
	"normal":   lipgloss.Color("#a8a77a"),
	"fire":     lipgloss.Color("#ee8130"),
	"water":    lipgloss.Color("#6390f0"),
	"electric": lipgloss.Color("#f7d02c"),
	"grass":    lipgloss.Color("#7ac74c"),
	"ice":      lipgloss.Color("#96d9d6"),
	"fighting": lipgloss.Color("#c22e28"),
	"poison":   lipgloss.Color("#a33ea1"),
	"ground":   lipgloss.Color("#e2bf65"),
	"flying":   lipgloss.Color("#a98ff3"),
	"psychic":  lipgloss.Color("#f95587"),
	"bug":      lipgloss.Color("#a6b91a"),
	"rock":     lipgloss.Color("#b6a136"),
	"ghost":    lipgloss.Color("#735797"),
	"dragon":   lipgloss.Color("#6f35fc"),
	"dark":     lipgloss.Color("#705746"),
	"steel":    lipgloss.Color("#b7b7ce"),
	"fairy":    lipgloss.Color("#d685ad"),
}

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme picks a theme. An explicit preference wins; otherwise the
// terminal background is read from COLORFGBG ("fg;bg").
func DetectTheme(preferDark bool) Theme {
	if preferDark {
		return DarkTheme()
	}

	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) >= 2 {
			// 0-6 and 8 (dark grey) are dark backgrounds
			if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style
	Pane    lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Interactive
	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Selected  lipgloss.Style
	Cursor    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		// Layout styles
		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(0, 2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		// Text styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		// Interactive styles
		Prompt: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		// Component styles
		Spinner: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme(false))
}

// TypeBadge renders a type name as a colored badge.
func (s Styles) TypeBadge(typeName string) string {
	badge := s.Badge
	if c, ok := TypeColors[strings.ToLower(typeName)]; ok {
		badge = badge.Background(c)
	}
	return badge.Render(typeName)
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
