package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var panelBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

// RenderPanel draws content in a rounded box with title set into the top
// border.
func RenderPanel(title, content string) string {
	padded := lipgloss.NewStyle().Padding(1, 2, 0).Render(content)
	lines := strings.Split(padded, "\n")

	width := 0
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}

	styledTitle := " " + TitleStyle.UnsetPadding().Render(title) + " "
	// "╭─" plus the title, the rest of the top border fills up to "╮"
	fill := max(width-1-lipgloss.Width(styledTitle), 1)

	var b strings.Builder
	b.WriteString(panelBorderStyle.Render("╭─") + styledTitle + panelBorderStyle.Render(strings.Repeat("─", fill)+"╮") + "\n")
	for _, line := range lines {
		pad := strings.Repeat(" ", width-lipgloss.Width(line))
		b.WriteString(panelBorderStyle.Render("│") + line + pad + panelBorderStyle.Render("│") + "\n")
	}
	b.WriteString(panelBorderStyle.Render("╰"+strings.Repeat("─", width)+"╯") + "\n")

	return b.String()
}

// TableSection represents a section in a detail table
type TableSection struct {
	Header string
	Rows   []TableRow
}

// TableRow represents a row in a detail table
type TableRow struct {
	Label string
	Value string
}

// RenderDetailTable renders label/value rows grouped in sections.
func RenderDetailTable(sections []TableSection) string {
	labelStyle := lipgloss.NewStyle().Bold(true).Width(20)
	headerStyle := lipgloss.NewStyle().Bold(true).Underline(true)

	var b strings.Builder
	for i, section := range sections {
		if section.Header != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(headerStyle.Render(section.Header) + "\n\n")
		}
		for _, row := range section.Rows {
			b.WriteString(labelStyle.Render(row.Label) + row.Value + "\n")
		}
	}
	return b.String()
}
