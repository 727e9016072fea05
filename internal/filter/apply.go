package filter

import "github.com/rshade/peoplegrid/internal/person"

// Matches reports whether p passes every constraint in s. Age bounds are inclusive and
// compare against the date-of-birth age.
func (s State) Matches(p person.Person) bool {
	if s.MinAge != 0 && p.DOB.Age < s.MinAge {
		return false
	}
	if s.MaxAge != 0 && p.DOB.Age > s.MaxAge {
		return false
	}
	if s.Gender.IsSet() && p.Gender != s.Gender {
		return false
	}
	return true
}

// Apply returns the people matching s in their original order. The input is not modified.
func Apply(s State, people []person.Person) []person.Person {
	if s.IsZero() {
		return people
	}
	out := make([]person.Person, 0, len(people))
	for _, p := range people {
		if s.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
