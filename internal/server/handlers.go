package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
)

// maxResults mirrors the upstream limit on a single page.
const maxResults = 5000

// FilteredPage is the body of /persons/all.
type FilteredPage struct {
	Results []person.Person `json:"results"`
	Info    person.Info     `json:"info"`
	Filters filter.State    `json:"filters"`
	// Total is the size of the unfiltered batch.
	Total int `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := intParam(r, "results")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results > maxResults {
		s.writeError(w, r, badRequest("results must be at most %d", maxResults))
		return
	}

	pq := people.PageQuery{Page: page, Results: results, Seed: r.URL.Query().Get("seed")}
	data, err := s.client.Fetch(r.Context(), s.queries.Paged(pq))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	state, err := s.requestFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.client.Fetch(r.Context(), s.queries.All())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, FilteredPage{
		Results: filter.Apply(state, data.Results),
		Info:    data.Info,
		Filters: state,
		Total:   data.Len(),
	})
}

func (s *Server) handleByGender(w http.ResponseWriter, r *http.Request) {
	g, err := person.ParseGender(mux.Vars(r)["gender"])
	if err != nil || !g.IsSet() {
		s.writeError(w, r, badRequest("gender must be one of male, female"))
		return
	}

	data, err := s.client.Fetch(r.Context(), s.queries.ByGender(g))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.filters.Filters())
}

// handleSetFilters applies minAge, maxAge and gender query parameters as a patch.
// Parameters that are absent or zero leave the stored value unchanged.
func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	p, err := patchFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.filters.Set(p)
	s.writeJSON(w, http.StatusOK, s.filters.Filters())
}

func (s *Server) handleResetFilters(w http.ResponseWriter, _ *http.Request) {
	s.filters.Reset()
	s.writeJSON(w, http.StatusOK, s.filters.Filters())
}

func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	n := s.client.Len()
	s.client.Clear()
	s.writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

// requestFilters starts from the shared filter and overlays the request's own
// constraints, without touching the shared store.
func (s *Server) requestFilters(r *http.Request) (filter.State, error) {
	p, err := patchFromQuery(r)
	if err != nil {
		return filter.State{}, err
	}
	state := s.filters.Filters()
	if p.MinAge != 0 {
		state.MinAge = p.MinAge
	}
	if p.MaxAge != 0 {
		state.MaxAge = p.MaxAge
	}
	if p.Gender.IsSet() {
		state.Gender = p.Gender
	}
	return state, nil
}

func patchFromQuery(r *http.Request) (filter.Patch, error) {
	minAge, err := intParam(r, "minAge")
	if err != nil {
		return filter.Patch{}, err
	}
	maxAge, err := intParam(r, "maxAge")
	if err != nil {
		return filter.Patch{}, err
	}
	g, err := person.ParseGender(r.URL.Query().Get("gender"))
	if err != nil {
		return filter.Patch{}, badRequest("gender must be one of male, female")
	}
	return filter.Patch{MinAge: minAge, MaxAge: maxAge, Gender: g}, nil
}
