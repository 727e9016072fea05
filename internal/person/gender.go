package person

import (
	"errors"
	"fmt"
	"strings"
)

// Gender is the gender reported by the API. The zero value means unset.
type Gender string

// Supported genders.
const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ErrInvalidGender is returned by ParseGender for unknown values.
var ErrInvalidGender = errors.New("invalid gender")

// Genders lists the selectable genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// ParseGender converts user input into a Gender. Matching is case-insensitive and
// the empty string parses to GenderUnset.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderUnset, GenderMale, GenderFemale:
		return g, nil
	default:
		return GenderUnset, fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidGender, s, GenderMale, GenderFemale)
	}
}

// IsSet reports whether g carries a value.
func (g Gender) IsSet() bool {
	return g != GenderUnset
}

// Next cycles through unset, male and female. Used by interactive toggles.
func (g Gender) Next() Gender {
	switch g {
	case GenderUnset:
		return GenderMale
	case GenderMale:
		return GenderFemale
	default:
		return GenderUnset
	}
}

func (g Gender) String() string {
	if g == GenderUnset {
		return "any"
	}
	return string(g)
}
