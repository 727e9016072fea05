package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
)

// View renders the current view (Bubble Tea interface).
func (m BrowserModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	var main string
	if m.state == ViewStateFilter {
		main = m.panel.View()
	} else {
		main = m.renderContent()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

func (m BrowserModel) renderSidebar() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("peoplegrid"))
	b.WriteString("\n\n")
	writeField(&b, "Mode:    ", m.mode.String())
	if m.mode == ModePaged {
		writeField(&b, "Page:    ", strconv.Itoa(m.page))
	}
	res := m.Result()
	if res.HasData() && res.Data != nil {
		writeField(&b, "Showing: ", fmt.Sprintf("%d/%d", len(m.Visible()), res.Data.Len()))
	}
	writeField(&b, "Status:  ", statusLabel(res))

	if m.mode == ModeAll {
		b.WriteString("\n")
		b.WriteString(renderFilterSummary(m.filters.Filters()))
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(m.helpText()))
	return SidebarStyle.Height(max(m.height-borderPadding, 1)).Render(b.String())
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label))
	b.WriteString(ValueStyle.Render(value))
	b.WriteString("\n")
}

func renderFilterSummary(s filter.State) string {
	var b strings.Builder
	writeField(&b, "Min age: ", ageLabel(s.MinAge))
	writeField(&b, "Max age: ", ageLabel(s.MaxAge))
	writeField(&b, "Gender:  ", s.Gender.String())
	return b.String()
}

func ageLabel(n int) string {
	if n == 0 {
		return "any"
	}
	return strconv.Itoa(n)
}

func statusLabel(r query.Result[*person.Page]) string {
	switch {
	case r.IsPlaceholder:
		return "loading next"
	case r.IsFetching && r.HasData():
		return "refreshing"
	default:
		return strings.ToLower(r.Status.String())
	}
}

func (m BrowserModel) helpText() string {
	lines := []string{"a: toggle mode", "f: filters", "x: reset filters", "r: refetch", "j/k: scroll", "q: quit"}
	if m.mode == ModePaged {
		lines = append([]string{"n/p: next/prev page"}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m BrowserModel) renderContent() string {
	res := m.Result()
	var sections []string

	if banner := m.renderBanner(res); banner != "" {
		sections = append(sections, banner)
	}

	switch {
	case res.Status == query.StatusLoading && !res.HasData():
		sections = append(sections, m.loading.View()+" Loading people...")
	case res.Status == query.StatusError && !res.HasData():
		// Banner says it all.
	case res.Status == query.StatusIdle:
		sections = append(sections, InfoStyle.Render("Nothing loaded yet."))
	default:
		people := m.Visible()
		if len(people) == 0 {
			sections = append(sections, InfoStyle.Render("No people match the current filters."))
			break
		}
		sections = append(sections, renderGrid(people, m.cols, m.scroll, m.visibleRows()))
	}

	return lipgloss.NewStyle().PaddingLeft(1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m BrowserModel) renderBanner(res query.Result[*person.Page]) string {
	switch {
	case res.Status == query.StatusError:
		msg := fmt.Sprintf("Failed to load people (%d attempts): %v", res.FailureCount, failureReason(res.Err))
		width := max(m.width-sidebarWidth-borderPadding*2, 20) //nolint:mnd // minimum banner width
		return ErrorStyle.Width(width).Render(msg) + "\n" + SubtleStyle.Render("Press r to retry.")
	case res.IsPlaceholder:
		return InfoStyle.Render(m.loading.View() + " Loading page " + strconv.Itoa(m.page) + ", showing the previous page")
	case res.IsFetching && res.HasData():
		return SubtleStyle.Render(m.loading.View() + " Refreshing")
	}
	return ""
}

// failureReason strips the query wrapper so the banner shows what the API said.
func failureReason(err error) error {
	var fe *query.FetchError
	if errors.As(err, &fe) {
		return fe.Err
	}
	return err
}
