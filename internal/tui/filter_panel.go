package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/person"
)

// Panel fields in tab order.
const (
	fieldMinAge = iota
	fieldMaxAge
	fieldGender
	fieldCount
)

const ageInputLimit = 3

// filterPanel edits a filter.State before it is applied to the store.
type filterPanel struct {
	minAge textinput.Model
	maxAge textinput.Model
	gender person.Gender
	focus  int
	err    string
}

func newAgeInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = ageInputLimit
	ti.Width = ageInputLimit + 1
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errors.New("digits only")
			}
		}
		return nil
	}
	return ti
}

func newFilterPanel() filterPanel {
	return filterPanel{
		minAge: newAgeInput("any"),
		maxAge: newAgeInput("any"),
	}
}

// load copies s into the inputs and focuses the first field.
func (p *filterPanel) load(s filter.State) {
	p.minAge.SetValue(ageText(s.MinAge))
	p.maxAge.SetValue(ageText(s.MaxAge))
	p.gender = s.Gender
	p.err = ""
	p.setFocus(fieldMinAge)
}

func ageText(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (p *filterPanel) setFocus(field int) {
	p.focus = (field + fieldCount) % fieldCount
	p.minAge.Blur()
	p.maxAge.Blur()
	switch p.focus {
	case fieldMinAge:
		p.minAge.Focus()
	case fieldMaxAge:
		p.maxAge.Focus()
	}
}

// state parses the inputs. Empty inputs mean no constraint.
func (p filterPanel) state() (filter.State, error) {
	minAge, err := parseAge(p.minAge.Value())
	if err != nil {
		return filter.State{}, fmt.Errorf("min age: %w", err)
	}
	maxAge, err := parseAge(p.maxAge.Value())
	if err != nil {
		return filter.State{}, fmt.Errorf("max age: %w", err)
	}
	if minAge != 0 && maxAge != 0 && minAge > maxAge {
		return filter.State{}, errors.New("min age is greater than max age")
	}
	return filter.State{MinAge: minAge, MaxAge: maxAge, Gender: p.gender}, nil
}

func parseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not an age", s)
	}
	return n, nil
}

// update handles keys while the panel is open. Enter and esc are handled by the model.
func (p filterPanel) update(msg tea.KeyMsg) (filterPanel, tea.Cmd) {
	switch msg.String() {
	case keyTab, keyDown:
		p.setFocus(p.focus + 1)
		return p, nil
	case keyBackTab, keyUp:
		p.setFocus(p.focus - 1)
		return p, nil
	}

	var cmd tea.Cmd
	switch p.focus {
	case fieldMinAge:
		p.minAge, cmd = p.minAge.Update(msg)
	case fieldMaxAge:
		p.maxAge, cmd = p.maxAge.Update(msg)
	case fieldGender:
		if msg.String() == keySpace || msg.String() == keyRight || msg.String() == keyLeft {
			p.gender = p.gender.Next()
		}
	}
	return p, cmd
}

func (p filterPanel) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("FILTERS"))
	b.WriteString("\n\n")
	b.WriteString(p.label(fieldMinAge, "Min age: ") + p.minAge.View() + "\n")
	b.WriteString(p.label(fieldMaxAge, "Max age: ") + p.maxAge.View() + "\n")
	b.WriteString(p.label(fieldGender, "Gender:  ") + ValueStyle.Render("< "+p.gender.String()+" >") + "\n")
	if p.err != "" {
		b.WriteString("\n" + ErrorStyle.Render(p.err) + "\n")
	}
	b.WriteString(SubtleStyle.Render("\ntab: next field  space: cycle gender  enter: apply  x: reset  esc: cancel"))
	return BoxStyle.Padding(0, 1).Render(b.String())
}

func (p filterPanel) label(field int, text string) string {
	if p.focus == field {
		return FocusedStyle.Render(text)
	}
	return LabelStyle.Render(text)
}

// applyFilter writes next to the store. Set ignores zero fields, so clearing a
// constraint that is currently set requires a reset first.
func applyFilter(store *filter.Store, next filter.State) {
	cur := store.Filters()
	if (cur.MinAge != 0 && next.MinAge == 0) ||
		(cur.MaxAge != 0 && next.MaxAge == 0) ||
		(cur.Gender.IsSet() && !next.Gender.IsSet()) {
		store.Reset()
	}
	store.Set(filter.Patch{MinAge: next.MinAge, MaxAge: next.MaxAge, Gender: next.Gender})
}
