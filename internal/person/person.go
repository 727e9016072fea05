package person

import "strings"

// Name is a person's display name.
type Name struct {
	Title string `json:"title" yaml:"title"`
	First string `json:"first" yaml:"first"`
	Last  string `json:"last"  yaml:"last"`
}

// Full joins the non-empty name parts with single spaces.
func (n Name) Full() string {
	parts := make([]string, 0, 3) //nolint:mnd // title, first, last
	for _, p := range []string{n.Title, n.First, n.Last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Picture holds the three profile picture URLs served by the API.
type Picture struct {
	Large     string `json:"large"     yaml:"large"`
	Medium    string `json:"medium"    yaml:"medium"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
}

// Age wraps the age objects the API nests under dob and registered.
type Age struct {
	Age int `json:"age" yaml:"age"`
}

// Person is one fetched individual.
type Person struct {
	Name       Name    `json:"name"       yaml:"name"`
	Picture    Picture `json:"picture"    yaml:"picture"`
	Gender     Gender  `json:"gender"     yaml:"gender"`
	DOB        Age     `json:"dob"        yaml:"dob"`
	Registered Age     `json:"registered" yaml:"registered"`
	Email      string  `json:"email"      yaml:"email"`
	Phone      string  `json:"phone"      yaml:"phone"`
}

// Info is the pagination metadata echoed back by the API.
type Info struct {
	Page    int    `json:"page"           yaml:"page"`
	Results int    `json:"results"        yaml:"results"`
	Seed    string `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Page is a single fetch result.
type Page struct {
	Results []Person `json:"results" yaml:"results"`
	Info    Info     `json:"info"    yaml:"info"`
}

// Len returns the number of people in the page. A nil page has none.
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Results)
}
