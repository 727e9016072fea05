package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/layout"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// fakeAPI returns n people per page with DOB ages 20, 21, ... and alternating
// genders. Pages listed in gates block until their channel is closed.
type fakeAPI struct {
	n     int
	fail  error
	mu    sync.Mutex
	gates map[int]chan struct{}
}

func (f *fakeAPI) FetchPage(_ context.Context, p randomuser.Params) (*person.Page, error) {
	f.mu.Lock()
	gate := f.gates[p.Page]
	fail := f.fail
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}
	page := &person.Page{Info: person.Info{Page: p.Page, Results: f.n}}
	for i := range f.n {
		g := person.GenderMale
		if i%2 == 1 {
			g = person.GenderFemale
		}
		page.Results = append(page.Results, person.Person{
			Name:   person.Name{First: "p" + strconv.Itoa(p.Page), Last: "n" + strconv.Itoa(i)},
			Gender: g,
			DOB:    person.Age{Age: 20 + i},
		})
	}
	return page, nil
}

func (f *fakeAPI) FetchByGender(context.Context, person.Gender) (*person.Page, error) {
	return &person.Page{}, nil
}

func newTestModel(t *testing.T, api *fakeAPI, mode Mode) BrowserModel {
	t.Helper()
	client := query.NewClient[*person.Page](query.Config{
		RetryBackoffMin: time.Millisecond,
		RetryBackoffMax: time.Millisecond,
	})
	m := NewBrowserModel(context.Background(), Deps{
		Client:         client,
		Queries:        people.NewQueries(api, 0),
		Filters:        filter.NewStore(),
		Results:        api.n,
		StartMode:      mode,
		ResizeInterval: 10 * time.Millisecond,
	})
	t.Cleanup(m.Close)
	return m
}

// settle waits for the observer of mode to leave the loading state and feeds the
// update into the model.
func settle(t *testing.T, m BrowserModel, mode Mode) BrowserModel {
	t.Helper()
	obs := m.paged
	if mode == ModeAll {
		obs = m.all
	}
	require.Eventually(t, func() bool {
		r := obs.Result()
		return !r.IsFetching && r.Status != query.StatusLoading
	}, 2*time.Second, time.Millisecond)

	updated, _ := m.Update(queryUpdatedMsg{mode: mode, obs: obs})
	return updated.(BrowserModel)
}

func press(t *testing.T, m BrowserModel, keys ...string) BrowserModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case keyEnter:
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case keyEsc:
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case keyTab:
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case keySpace:
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(BrowserModel)
	}
	return m
}

func TestNewBrowserModel_StartsLoading(t *testing.T) {
	api := &fakeAPI{n: 4, gates: map[int]chan struct{}{1: make(chan struct{})}}
	m := newTestModel(t, api, ModePaged)
	defer close(api.gates[1])

	assert.Equal(t, ModePaged, m.Mode())
	assert.Equal(t, 1, m.Page())
	assert.Equal(t, query.StatusLoading, m.Result().Status)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Loading people")
}

func TestBrowserModel_ShowsPage(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 4}, ModePaged)
	m = settle(t, m, ModePaged)

	require.Equal(t, query.StatusSuccess, m.Result().Status)
	assert.Len(t, m.Visible(), 4)
	assert.Contains(t, m.View(), "P1 N0")
}

func TestBrowserModel_NextPageKeepsPreviousVisible(t *testing.T) {
	api := &fakeAPI{n: 2, gates: map[int]chan struct{}{}}
	m := newTestModel(t, api, ModePaged)
	m = settle(t, m, ModePaged)

	api.mu.Lock()
	api.gates[2] = make(chan struct{})
	api.mu.Unlock()

	m = press(t, m, keyNext)
	assert.Equal(t, 2, m.Page())
	res := m.Result()
	assert.True(t, res.IsPlaceholder)
	assert.Equal(t, query.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Data.Info.Page)
	assert.Contains(t, m.View(), "showing the previous page")

	close(api.gates[2])
	m = settle(t, m, ModePaged)
	assert.False(t, m.Result().IsPlaceholder)
	assert.Equal(t, 2, m.Result().Data.Info.Page)

	m = press(t, m, keyPrev, keyPrev)
	assert.Equal(t, 1, m.Page(), "page never goes below 1")
}

func TestBrowserModel_WindowSizeIsThrottled(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 1}, ModePaged)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 86, Height: 30})
	m = updated.(BrowserModel)
	assert.Equal(t, 2, m.Cols(), "first size applies immediately")

	for _, w := range []int{100, 116, 146} {
		updated, _ = m.Update(tea.WindowSizeMsg{Width: w, Height: 30})
		m = updated.(BrowserModel)
	}
	assert.Equal(t, 2, m.Cols(), "later sizes wait for the throttle")

	// Intermediate sizes may surface if the throttle fired mid-burst; the last one
	// always arrives.
	var sized resizedMsg
	for range 3 {
		msg, ok := m.resize.wait()().(resizedMsg)
		require.True(t, ok)
		if sized = msg; sized.Width == 146 {
			break
		}
	}
	assert.Equal(t, 146, sized.Width, "last size wins")

	updated, _ = m.Update(sized)
	m = updated.(BrowserModel)
	assert.Equal(t, layout.TerminalGrid.Cols(146), m.Cols())
	assert.Equal(t, 4, m.Cols())
}

func TestBrowserModel_AllModeAppliesFilters(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 10}, ModePaged)
	m = settle(t, m, ModePaged)

	m = press(t, m, keyFilter)
	require.Equal(t, ViewStateFilter, m.State())
	assert.Contains(t, m.View(), "FILTERS")

	m = press(t, m, "2", "2", keyTab, "2", "6", keyTab, keySpace, keySpace, keyEnter)
	assert.Equal(t, ViewStateBrowse, m.State())
	assert.Equal(t, ModeAll, m.Mode(), "applying filters switches to the all view")
	assert.Equal(t, filter.State{MinAge: 22, MaxAge: 26, Gender: person.GenderFemale}, m.filters.Filters())

	m = settle(t, m, ModeAll)
	got := m.Visible()
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, person.GenderFemale, p.Gender)
	}

	m = press(t, m, keyReset)
	assert.Equal(t, filter.State{}, m.filters.Filters())
	assert.Len(t, m.Visible(), 10)
}

func TestBrowserModel_FilterPanelValidation(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 1}, ModePaged)

	m = press(t, m, keyFilter, "5", "0", keyTab, "3", "0", keyEnter)
	assert.Equal(t, ViewStateFilter, m.State())
	assert.Contains(t, m.panel.err, "greater than max")
	assert.Equal(t, filter.State{}, m.filters.Filters())

	m = press(t, m, keyEsc)
	assert.Equal(t, ViewStateBrowse, m.State())
}

func TestApplyFilter_ClearsDroppedConstraints(t *testing.T) {
	store := filter.NewStore()
	store.Set(filter.Patch{MinAge: 30, MaxAge: 50, Gender: person.GenderMale})

	applyFilter(store, filter.State{MinAge: 18, MaxAge: 50, Gender: person.GenderMale})
	assert.Equal(t, filter.State{MinAge: 18, MaxAge: 50, Gender: person.GenderMale}, store.Filters())

	applyFilter(store, filter.State{MinAge: 18})
	assert.Equal(t, filter.State{MinAge: 18}, store.Filters())
}

func TestBrowserModel_ErrorBannerAndRetry(t *testing.T) {
	api := &fakeAPI{n: 2, fail: &randomuser.ServerError{StatusCode: 500, Message: "boom"}}
	m := newTestModel(t, api, ModePaged)
	m = settle(t, m, ModePaged)

	res := m.Result()
	require.Equal(t, query.StatusError, res.Status)
	assert.Equal(t, 1+people.PagedRetry, res.FailureCount)
	assert.True(t, errors.Is(res.Err, randomuser.ErrServer))
	view := m.View()
	assert.Contains(t, view, "Press r to retry")
	assert.Contains(t, view, "boom")

	api.mu.Lock()
	api.fail = nil
	api.mu.Unlock()

	m = press(t, m, keyRetry)
	assert.Equal(t, query.StatusLoading, m.Result().Status)
	m = settle(t, m, ModePaged)
	assert.Equal(t, query.StatusSuccess, m.Result().Status)
}

func TestBrowserModel_StaleObserverUpdatesAreIgnored(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 1}, ModePaged)
	other := m.client.Observe(context.Background(), m.queries.All())
	defer other.Close()

	_, cmd := m.Update(queryUpdatedMsg{mode: ModeAll, obs: other})
	assert.Nil(t, cmd)
}

func TestBrowserModel_Quit(t *testing.T) {
	m := newTestModel(t, &fakeAPI{n: 1}, ModePaged)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(BrowserModel)

	assert.Equal(t, ViewStateQuitting, m.State())
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Empty(t, m.View())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Mr Jean Dupont", DisplayName(person.Name{Title: "mr", First: "jean", Last: "dupont"}))
}

func TestRenderGrid(t *testing.T) {
	ppl := make([]person.Person, 5)
	for i := range ppl {
		ppl[i] = person.Person{Name: person.Name{First: "n" + strconv.Itoa(i)}}
	}
	out := renderGrid(ppl, 2, 1, 1)
	assert.Contains(t, out, "N2")
	assert.Contains(t, out, "N3")
	assert.NotContains(t, out, "N0")
	assert.NotContains(t, out, "N4")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate("a very long email address", 8)
	assert.Equal(t, 8, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
