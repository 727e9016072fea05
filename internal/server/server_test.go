package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
	"github.com/rshade/peoplegrid/internal/server"
)

// upstream fakes the random-user API. Each person's DOB age is 20 + index; genders
// alternate male, female.
type upstream struct {
	calls  atomic.Int32
	status int
	delay  time.Duration
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	if u.delay > 0 {
		time.Sleep(u.delay)
	}
	if u.status != 0 {
		w.WriteHeader(u.status)
		_, _ = w.Write([]byte(`{"error":"Uh oh, something has gone wrong."}`))
		return
	}

	q := r.URL.Query()
	n, _ := strconv.Atoi(q.Get("results"))
	pageNo, _ := strconv.Atoi(q.Get("page"))
	page := person.Page{Info: person.Info{Page: pageNo, Results: n, Seed: q.Get("seed")}}
	for i := range n {
		g := person.GenderMale
		if i%2 == 1 {
			g = person.GenderFemale
		}
		if want := q.Get("gender"); want != "" {
			g = person.Gender(want)
		}
		page.Results = append(page.Results, person.Person{
			Name:   person.Name{First: "P" + strconv.Itoa(i)},
			Gender: g,
			DOB:    person.Age{Age: 20 + i},
		})
	}
	_ = json.NewEncoder(w).Encode(page)
}

type fixture struct {
	up      *upstream
	filters *filter.Store
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	up := &upstream{}
	ts := httptest.NewServer(up)
	t.Cleanup(ts.Close)

	api := randomuser.New(randomuser.WithBaseURL(ts.URL))
	client := query.NewClient[*person.Page](query.Config{
		RetryBackoffMin: time.Millisecond,
		RetryBackoffMax: time.Millisecond,
	})
	filters := filter.NewStore()
	srv := server.New(people.NewQueries(api, time.Minute), client, filters, zerolog.Nop())
	return &fixture{up: up, filters: filters, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(server.TraceHeader))
}

func TestPersons_Page(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/persons?page=2&results=4&seed=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[person.Page](t, rec)
	assert.Equal(t, 4, page.Len())
	assert.Equal(t, 2, page.Info.Page)
	assert.Equal(t, "abc", page.Info.Seed)

	// Same key within the stale time is served from cache.
	rec = f.do(t, http.MethodGet, "/persons?page=2&results=4&seed=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), f.up.calls.Load())

	// A different seed is a different page.
	rec = f.do(t, http.MethodGet, "/persons?page=2&results=4&seed=xyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xyz", decode[person.Page](t, rec).Info.Seed)
	assert.Equal(t, int32(2), f.up.calls.Load())
}

func TestPersons_BadParams(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{
		"/persons?page=x",
		"/persons?results=-1",
		"/persons?results=5001",
		"/persons/all?minAge=old",
		"/persons/all?gender=other",
		"/persons/gender/other",
	} {
		rec := f.do(t, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decode[map[string]string](t, rec)
		assert.NotEmpty(t, body["error"], target)
	}
	assert.Zero(t, f.up.calls.Load())
}

func TestPersons_UpstreamFailureIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.up.status = http.StatusServiceUnavailable

	rec := f.do(t, http.MethodGet, "/persons?page=1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Contains(t, body["error"], "something has gone wrong")
	assert.Equal(t, int32(1+people.PagedRetry), f.up.calls.Load())
}

func TestPersons_ConcurrentRequestsCoalesce(t *testing.T) {
	f := newFixture(t)
	f.up.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = f.do(t, http.MethodGet, "/persons?page=1&results=3").Code
		}()
	}
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, http.StatusOK, c)
	}
	assert.Equal(t, int32(1), f.up.calls.Load())
}

func TestPersonsAll_FiltersFromRequestAndStore(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/persons/all?minAge=22&maxAge=25&gender=female")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[server.FilteredPage](t, rec)
	assert.Equal(t, randomuser.DefaultResults, body.Total)
	require.Len(t, body.Results, 2)
	for _, p := range body.Results {
		assert.Equal(t, person.GenderFemale, p.Gender)
		assert.GreaterOrEqual(t, p.DOB.Age, 22)
		assert.LessOrEqual(t, p.DOB.Age, 25)
	}

	// The shared store applies when the request carries nothing.
	f.filters.Set(filter.Patch{MaxAge: 21})
	rec = f.do(t, http.MethodGet, "/persons/all")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[server.FilteredPage](t, rec)
	assert.Len(t, body.Results, 2)
	assert.Equal(t, filter.State{MaxAge: 21}, body.Filters)

	assert.Equal(t, int32(1), f.up.calls.Load(), "all-persons batch is fetched once")
}

func TestPersonsByGender(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/persons/gender/FEMALE")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[person.Page](t, rec)
	require.NotEmpty(t, page.Results)
	for _, p := range page.Results {
		assert.Equal(t, person.GenderFemale, p.Gender)
	}
}

func TestFilters_Endpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/filters?minAge=30&maxAge=50&gender=male")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, filter.State{MinAge: 30, MaxAge: 50, Gender: person.GenderMale}, decode[filter.State](t, rec))

	rec = f.do(t, http.MethodPatch, "/filters?minAge=18")
	assert.Equal(t, filter.State{MinAge: 18, MaxAge: 50, Gender: person.GenderMale}, decode[filter.State](t, rec))

	rec = f.do(t, http.MethodGet, "/filters")
	assert.Equal(t, filter.State{MinAge: 18, MaxAge: 50, Gender: person.GenderMale}, decode[filter.State](t, rec))

	rec = f.do(t, http.MethodDelete, "/filters")
	assert.Equal(t, filter.State{}, decode[filter.State](t, rec))
}

func TestCache_Clear(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/persons?page=1").Code)

	rec := f.do(t, http.MethodDelete, "/cache")
	assert.Equal(t, map[string]int{"cleared": 1}, decode[map[string]int](t, rec))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/persons?page=1").Code)
	assert.Equal(t, int32(2), f.up.calls.Load())
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(server.TraceHeader))
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	up := &upstream{}
	ts := httptest.NewServer(up)
	defer ts.Close()

	srv := server.New(
		people.NewQueries(randomuser.New(randomuser.WithBaseURL(ts.URL)), 0),
		query.NewClient[*person.Page](query.Config{}),
		filter.NewStore(),
		zerolog.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0", ready) }()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
