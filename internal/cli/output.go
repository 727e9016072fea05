package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/rshade/peoplegrid/internal/cli/pagination"
	"github.com/rshade/peoplegrid/internal/config"
	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/tui"
)

// listOutput is the structured form of `peoplegrid list`.
type listOutput struct {
	Results    []person.Person  `json:"results"              yaml:"results"`
	Pages      []person.Info    `json:"pages,omitempty"      yaml:"pages,omitempty"`
	Filters    filter.State     `json:"filters"              yaml:"filters"`
	Total      int              `json:"total"                yaml:"total"`
	Pagination *pagination.Meta `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderList writes out in the requested format.
func renderList(w io.Writer, format string, out listOutput) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case config.FormatNDJSON:
		enc := json.NewEncoder(w)
		for _, p := range out.Results {
			if err := enc.Encode(p); err != nil {
				return err
			}
		}
		return nil
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	case config.FormatTable:
		return renderTable(w, out)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderTable(w io.Writer, out listOutput) error {
	if len(out.Results) == 0 {
		_, err := fmt.Fprintln(w, "No people match.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "GENDER", "AGE", "EMAIL", "PHONE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, p := range out.Results {
		t.Row(tui.DisplayName(p.Name), p.Gender.String(), strconv.Itoa(p.DOB.Age), p.Email, p.Phone)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	summary := fmt.Sprintf("%d of %d people", len(out.Results), out.Total)
	if !out.Filters.IsZero() {
		summary += fmt.Sprintf(" (min age %d, max age %d, gender %s)",
			out.Filters.MinAge, out.Filters.MaxAge, out.Filters.Gender)
	}
	if out.Pagination != nil && out.Pagination.TotalPages > 1 {
		summary += fmt.Sprintf(", page %d/%d", out.Pagination.CurrentPage, out.Pagination.TotalPages)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
