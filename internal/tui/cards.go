package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rshade/peoplegrid/internal/layout"
	"github.com/rshade/peoplegrid/internal/person"
)

// cardContentWidth is the text width inside a card: the grid column minus border
// and padding.
const cardContentWidth = 26

// DisplayName title-cases the full name. The API returns some names in lower case.
func DisplayName(n person.Name) string {
	return cases.Title(language.Und).String(n.Full())
}

// renderCard draws one person.
func renderCard(p person.Person) string {
	lines := []string{
		HeaderStyle.Render(truncate(DisplayName(p.Name), cardContentWidth)),
		ValueStyle.Render(fmt.Sprintf("%s, %d", p.Gender, p.DOB.Age)),
		LabelStyle.Render(truncate(p.Email, cardContentWidth)),
		LabelStyle.Render(truncate(p.Phone, cardContentWidth)),
		SubtleStyle.Render(fmt.Sprintf("member for %d yrs", p.Registered.Age)),
	}
	return CardStyle.
		Width(layout.TerminalGrid.Column - borderPadding).
		Render(strings.Join(lines, "\n"))
}

// renderGrid lays cards out cols per row, showing rows [from, from+count).
func renderGrid(people []person.Person, cols, from, count int) string {
	cols = max(cols, 1)
	var rows []string
	for start := from * cols; start < len(people) && len(rows) < count; start += cols {
		end := min(start+cols, len(people))
		cards := make([]string, 0, end-start)
		for _, p := range people[start:end] {
			cards = append(cards, renderCard(p))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
