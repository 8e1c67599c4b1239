package ui

import (
	"fmt"
	"strings"

	"pokedex/internal/catalog"
	"pokedex/internal/pokedex"

	"github.com/charmbracelet/glamour"
)

// DetailMarkdown formats one pokemon as a markdown card. stages may be nil
// when the evolution line has not been resolved.
func DetailMarkdown(d *catalog.EntityDetail, stages []pokedex.EvolutionStage) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s #%03d\n\n", DisplayName(d.Name), d.ID)

	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Height | %.1f m |\n", d.HeightMetres())
	fmt.Fprintf(&sb, "| Weight | %.1f kg |\n", d.WeightKilograms())
	if len(d.Types) > 0 {
		fmt.Fprintf(&sb, "| Types | %s |\n", strings.Join(d.Types, ", "))
	}
	if d.SpriteURL != "" {
		fmt.Fprintf(&sb, "| Sprite | %s |\n", d.SpriteURL)
	}

	if len(stages) > 0 {
		sb.WriteString("\n## Evolution\n\n")
		for i, s := range stages {
			marker := ""
			if s.Name == d.Name {
				marker = " *(this one)*"
			}
			fmt.Fprintf(&sb, "%d. **%s**%s\n", i+1, DisplayName(s.Name), marker)
		}
	}

	return sb.String()
}

// EvolutionLine renders stages as "A → B → C".
func EvolutionLine(stages []pokedex.EvolutionStage) string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = DisplayName(s.Name)
	}
	return strings.Join(names, " → ")
}

// DisplayName capitalizes each dash-separated part of a catalog name.
func DisplayName(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}

// Markdown renders markdown for the terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer for the given theme and wrap width.
func NewMarkdown(theme Theme, width int) *Markdown {
	if width <= 0 {
		width = 80
	}
	var r *glamour.TermRenderer
	if theme.IsDark {
		r, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
	} else {
		r, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(width),
		)
	}
	return &Markdown{renderer: r}
}

// NewPlainMarkdown creates a renderer without colors, for non-terminal output.
func NewPlainMarkdown(width int) *Markdown {
	if width <= 0 {
		width = 80
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(width),
	)
	return &Markdown{renderer: r}
}

// Render renders content, falling back to the raw text if glamour fails.
func (m *Markdown) Render(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m != nil && m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return rendered
		}
	}
	return content
}
