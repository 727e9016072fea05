package pagination

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rshade/peoplegrid/internal/person"
)

// PersonSorter orders people by a named field.
type PersonSorter struct {
	less map[string]func(a, b person.Person) bool
}

// NewPersonSorter returns a sorter for name, age, registered, email and gender.
func NewPersonSorter() *PersonSorter {
	return &PersonSorter{
		less: map[string]func(a, b person.Person) bool{
			"name": func(a, b person.Person) bool {
				return strings.ToLower(a.Name.Last+" "+a.Name.First) < strings.ToLower(b.Name.Last+" "+b.Name.First)
			},
			"age":        func(a, b person.Person) bool { return a.DOB.Age < b.DOB.Age },
			"registered": func(a, b person.Person) bool { return a.Registered.Age < b.Registered.Age },
			"email":      func(a, b person.Person) bool { return a.Email < b.Email },
			"gender":     func(a, b person.Person) bool { return a.Gender < b.Gender },
		},
	}
}

// IsValidField reports whether field can be sorted on.
func (s *PersonSorter) IsValidField(field string) bool {
	_, ok := s.less[field]
	return ok
}

// GetValidFields returns the sortable fields in alphabetical order.
func (s *PersonSorter) GetValidFields() []string {
	fields := make([]string, 0, len(s.less))
	for f := range s.less {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Sort returns a sorted copy of people. Equal elements keep their order.
func (s *PersonSorter) Sort(people []person.Person, field, order string) ([]person.Person, error) {
	less, ok := s.less[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.GetValidFields(), ", "))
	}

	sorted := make([]person.Person, len(people))
	copy(sorted, people)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted, nil
}
