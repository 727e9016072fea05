package cli_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rshade/peoplegrid/internal/cli"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// upstream fakes the random-user API. Person i is 20+i years old; genders alternate
// male, female unless the request asks for one.
type upstream struct {
	calls  atomic.Int32
	status int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
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
			Name:   person.Name{First: fmt.Sprintf("p%d-%d", pageNo, i), Last: "doe"},
			Gender: g,
			DOB:    person.Age{Age: 20 + i},
			Email:  fmt.Sprintf("p%d-%d@example.com", pageNo, i),
		})
	}
	_ = json.NewEncoder(w).Encode(page)
}

// setup points the CLI at a fake upstream and an empty home directory.
func setup(t *testing.T) (*upstream, string) {
	t.Helper()
	up := &upstream{}
	ts := httptest.NewServer(up)
	t.Cleanup(ts.Close)

	home := t.TempDir()
	t.Setenv("PEOPLEGRID_HOME", home)
	t.Setenv("PEOPLEGRID_API_URL", ts.URL)
	t.Setenv("PEOPLEGRID_RESULTS", "")
	t.Setenv("PEOPLEGRID_OUTPUT", "")
	t.Setenv("PEOPLEGRID_LOG_FILE", "")
	t.Setenv("PEOPLEGRID_CACHE_ENABLED", "")
	return up, home
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type listJSON struct {
	Results    []person.Person `json:"results"`
	Pages      []person.Info   `json:"pages"`
	Total      int             `json:"total"`
	Pagination *struct {
		TotalItems int  `json:"total_items"`
		HasNext    bool `json:"has_next"`
	} `json:"pagination"`
}

func decodeList(t *testing.T, out string) listJSON {
	t.Helper()
	var got listJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

func TestList_Table(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--results", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "P1-0 Doe")
	assert.Contains(t, out, "p1-2@example.com")
	assert.Contains(t, out, "3 of 3 people")
}

func TestList_JSON(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--page", "2", "--results", "4", "--seed", "abc", "-o", "json")
	require.NoError(t, err)

	got := decodeList(t, out)
	require.Len(t, got.Results, 4)
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Pages, 1)
	assert.Equal(t, person.Info{Page: 2, Results: 4, Seed: "abc"}, got.Pages[0])
	assert.Nil(t, got.Pagination)
}

func TestList_NDJSON(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--results", "5", "--output", "ndjson")
	require.NoError(t, err)

	var lines int
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var p person.Person
		require.NoError(t, json.Unmarshal(sc.Bytes(), &p))
		assert.Equal(t, 20+lines, p.DOB.Age)
		lines++
	}
	assert.Equal(t, 5, lines)
}

func TestList_YAML(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--results", "2", "-o", "yaml")
	require.NoError(t, err)

	var got struct {
		Results []person.Person `yaml:"results"`
		Total   int             `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Results, 2)
	assert.Equal(t, 2, got.Total)
}

func TestList_DefaultFormatFromEnv(t *testing.T) {
	setup(t)
	t.Setenv("PEOPLEGRID_OUTPUT", "json")

	out, _, err := run(t, "list", "--results", "1")
	require.NoError(t, err)
	assert.Len(t, decodeList(t, out).Results, 1)
}

func TestList_MultiplePagesInOrder(t *testing.T) {
	up, _ := setup(t)

	out, _, err := run(t, "list", "--page", "3", "--pages", "3", "--results", "2", "-o", "json")
	require.NoError(t, err)

	got := decodeList(t, out)
	require.Len(t, got.Pages, 3)
	for i, info := range got.Pages {
		assert.Equal(t, 3+i, info.Page)
	}
	require.Len(t, got.Results, 6)
	assert.Equal(t, "p3-0", got.Results[0].Name.First)
	assert.Equal(t, "p5-1", got.Results[5].Name.First)
	assert.Equal(t, int32(3), up.calls.Load())
}

func TestList_AgeFilterOnPages(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--results", "10", "--min-age", "25", "--max-age", "27", "-o", "json")
	require.NoError(t, err)

	got := decodeList(t, out)
	assert.Equal(t, 10, got.Total)
	require.Len(t, got.Results, 3)
	for _, p := range got.Results {
		assert.GreaterOrEqual(t, p.DOB.Age, 25)
		assert.LessOrEqual(t, p.DOB.Age, 27)
	}
}

func TestList_GenderUsesServerFilter(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--gender", "FEMALE", "-o", "json")
	require.NoError(t, err)

	got := decodeList(t, out)
	assert.Len(t, got.Results, randomuser.DefaultResults)
	for _, p := range got.Results {
		assert.Equal(t, person.GenderFemale, p.Gender)
	}
}

func TestList_AllFiltersSortsAndWindows(t *testing.T) {
	setup(t)

	out, _, err := run(t, "list", "--all",
		"--gender", "male", "--min-age", "24", "--max-age", "34",
		"--sort", "age:desc", "--limit", "2", "--offset", "1", "-o", "json")
	require.NoError(t, err)

	got := decodeList(t, out)
	assert.Equal(t, randomuser.DefaultResults, got.Total)
	// Men are the even indexes: ages 24, 26, 28, 30, 32, 34.
	require.Len(t, got.Results, 2)
	assert.Equal(t, 32, got.Results[0].DOB.Age)
	assert.Equal(t, 30, got.Results[1].DOB.Age)
	require.NotNil(t, got.Pagination)
	assert.Equal(t, 6, got.Pagination.TotalItems)
	assert.True(t, got.Pagination.HasNext)
}

func TestList_InvalidFlags(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"page zero", []string{"--page", "0"}, "--page"},
		{"pages zero", []string{"--pages", "0"}, "--pages"},
		{"results too high", []string{"--results", "5001"}, "--results"},
		{"negative age", []string{"--min-age", "-1"}, "negative"},
		{"min above max", []string{"--min-age", "50", "--max-age", "30"}, "--min-age"},
		{"bad output", []string{"-o", "xml"}, "xml"},
		{"sort without all", []string{"--sort", "age"}, "require --all"},
		{"bad gender", []string{"--gender", "other"}, "gender"},
		{"bad sort field", []string{"--all", "--sort", "height"}, "height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"list"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
		})
	}
}

func TestList_UpstreamErrorExitCode(t *testing.T) {
	up, _ := setup(t)
	up.status = http.StatusBadRequest

	_, _, err := run(t, "list", "--results", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, randomuser.ErrServer)
	assert.Equal(t, cli.ExitUpstream, cli.ExitCode(err))
}

func TestList_DiskCacheServesSecondRun(t *testing.T) {
	up, _ := setup(t)
	t.Setenv("PEOPLEGRID_CACHE_ENABLED", "true")
	// Persisted results are only served without a call while they are fresh.
	_, _, err := run(t, "config", "set", "query.stale_time", "1m")
	require.NoError(t, err)

	first, _, err := run(t, "list", "--results", "3", "--seed", "s", "-o", "json")
	require.NoError(t, err)
	second, _, err := run(t, "list", "--results", "3", "--seed", "s", "-o", "json")
	require.NoError(t, err)

	assert.JSONEq(t, first, second)
	assert.Equal(t, int32(1), up.calls.Load())

	out, _, err := run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   1")

	out, _, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 cached result(s)")

	_, _, err = run(t, "list", "--results", "3", "--seed", "s", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestCachePrune_EmptyDirectory(t *testing.T) {
	setup(t)

	out, _, err := run(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired result(s)")
}

func TestConfig_InitGetSetList(t *testing.T) {
	_, home := setup(t)
	path := filepath.Join(home, "config.yaml")

	out, _, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	out, _, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at "+path)
	assert.FileExists(t, path)

	_, _, err = run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, _, err = run(t, "config", "init", "--force")
	require.NoError(t, err)

	_, _, err = run(t, "config", "set", "api.results", "42")
	require.NoError(t, err)

	out, _, err = run(t, "config", "get", "api.results")
	require.NoError(t, err)
	assert.Equal(t, "42", strings.TrimSpace(out))

	out, _, err = run(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "api.results")
	assert.Contains(t, out, "output.default_format")

	out, _, err = run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestConfig_SetDoesNotPersistEnv(t *testing.T) {
	_, home := setup(t)

	_, _, err := run(t, "config", "set", "api.results", "7")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url: "+randomuser.DefaultBaseURL)
}

func TestConfig_SetRejectsInvalidValue(t *testing.T) {
	setup(t)

	_, _, err := run(t, "config", "set", "api.results", "0")
	require.Error(t, err)

	_, _, err = run(t, "config", "set", "api.nope", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.nope")
}

func TestConfig_CommandsTolerateBrokenFile(t *testing.T) {
	_, home := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("api: ["), 0o600))

	_, _, err := run(t, "list")
	require.Error(t, err)

	_, _, err = run(t, "config", "validate")
	require.Error(t, err)

	out, stderr, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")
	assert.Contains(t, stderr, "Warning")
}

func TestOverlayFlagReplacesSection(t *testing.T) {
	setup(t)
	overlay := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(overlay, []byte("output:\n  default_format: json\n"), 0o600))

	out, _, err := run(t, "--config", overlay, "list", "--results", "1")
	require.NoError(t, err)
	assert.Len(t, decodeList(t, out).Results, 1)
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	setup(t)

	_, _, err := run(t, "browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peoplegrid list")
}

func TestVersionFlag(t *testing.T) {
	setup(t)

	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitOK},
		{"plain", errors.New("boom"), cli.ExitFailure},
		{"server", fmt.Errorf("fetching: %w", &randomuser.ServerError{StatusCode: http.StatusBadGateway}), cli.ExitUpstream},
		{"network", &randomuser.NetworkError{Err: errors.New("refused")}, cli.ExitUpstream},
		{"canceled", context.Canceled, cli.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}
