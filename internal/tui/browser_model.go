package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/layout"
	"github.com/rshade/peoplegrid/internal/logging"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
)

// Mode selects which query the grid shows.
type Mode int

// Browse modes.
const (
	// ModePaged pages through the API one page at a time.
	ModePaged Mode = iota
	// ModeAll shows one batch filtered locally by the filter store.
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "All"
	}
	return "Paged"
}

// ViewState is the screen being shown.
type ViewState int

// View states.
const (
	ViewStateBrowse ViewState = iota
	ViewStateFilter
	ViewStateQuitting
)

// Deps are the collaborators of the browser. Filters is shared with whatever else
// reads the filter.
type Deps struct {
	Client  *query.Client[*person.Page]
	Queries *people.Queries
	Filters *filter.Store

	Results   int
	Seed      string
	StartPage int
	StartMode Mode

	// ResizeInterval overrides ResizeInterval when positive.
	ResizeInterval time.Duration
}

// BrowserModel is the Bubble Tea model for the people browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowserModel struct {
	ctx     context.Context
	client  *query.Client[*person.Page]
	queries *people.Queries
	filters *filter.Store

	results int
	seed    string

	mode        Mode
	page        int
	paged       *query.Observer[*person.Page]
	all         *query.Observer[*person.Page]
	pagedResult query.Result[*person.Page]
	allResult   query.Result[*person.Page]
	filterRev   uint64

	state ViewState
	panel filterPanel

	width  int
	height int
	sized  bool
	cols   int
	scroll int

	loading *LoadingState
	resize  *resizer
}

// NewBrowserModel starts observing the initial query. Call Close when the program
// exits.
func NewBrowserModel(ctx context.Context, deps Deps) BrowserModel {
	page := max(deps.StartPage, 1)
	interval := deps.ResizeInterval
	if interval <= 0 {
		interval = ResizeInterval
	}

	m := BrowserModel{
		ctx:     ctx,
		client:  deps.Client,
		queries: deps.Queries,
		filters: deps.Filters,
		results: deps.Results,
		seed:    deps.Seed,
		mode:    deps.StartMode,
		page:    page,
		state:   ViewStateBrowse,
		panel:   newFilterPanel(),
		width:   defaultWidth,
		height:  defaultHeight,
		cols:    layout.TerminalGrid.Cols(defaultWidth),
		loading: NewLoadingState(),
		resize:  newResizer(ctx, interval),
	}
	m.filterRev = m.filters.Revision()

	m.paged = m.client.Observe(ctx, m.queries.Paged(m.pageQuery()))
	m.pagedResult = m.paged.Result()
	if m.mode == ModeAll {
		m.all = m.client.Observe(ctx, m.queries.All())
		m.allResult = m.all.Result()
	}
	return m
}

// Init starts the spinner and the background listeners (Bubble Tea interface).
func (m BrowserModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loading.Init(), m.resize.wait(), waitForUpdate(ModePaged, m.paged)}
	if m.all != nil {
		cmds = append(cmds, waitForUpdate(ModeAll, m.all))
	}
	return tea.Batch(cmds...)
}

// Close detaches the observers and stops the resize listener.
func (m BrowserModel) Close() {
	m.paged.Close()
	if m.all != nil {
		m.all.Close()
	}
	m.resize.stop()
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case resizedMsg:
		m.applySize(msg.Width, msg.Height)
		return m, m.resize.wait()
	case queryUpdatedMsg:
		return m.handleQueryUpdated(msg)
	case spinner.TickMsg:
		return m, m.loading.Update(msg)
	case tea.FocusMsg:
		m.client.WindowFocused()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == keyCtrlC {
			return m.quit()
		}
		if m.state == ViewStateFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleBrowseKey(msg)
	}
	return m, nil
}

// handleWindowSize applies the first size at once; later sizes go through the
// throttle so the grid does not reflow on every intermediate size while dragging.
func (m BrowserModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if !m.sized {
		m.sized = true
		m.applySize(msg.Width, msg.Height)
		return m, nil
	}
	m.resize.push(msg)
	return m, nil
}

func (m *BrowserModel) applySize(width, height int) {
	m.width = width
	m.height = height
	m.cols = layout.TerminalGrid.Cols(width)
	m.clampScroll()
}

func (m BrowserModel) handleQueryUpdated(msg queryUpdatedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.mode == ModePaged && msg.obs == m.paged:
		m.pagedResult = m.paged.Result()
	case msg.mode == ModeAll && msg.obs == m.all:
		m.allResult = m.all.Result()
	default:
		return m, nil
	}
	m.clampScroll()
	return m, waitForUpdate(msg.mode, msg.obs)
}

func (m BrowserModel) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		return m.quit()
	case keyNext, keyRight:
		if m.mode == ModePaged {
			m.gotoPage(m.page + 1)
		}
	case keyPrev, keyLeft:
		if m.mode == ModePaged && m.page > 1 {
			m.gotoPage(m.page - 1)
		}
	case keyMode:
		return m.toggleMode()
	case keyFilter:
		m.state = ViewStateFilter
		m.panel.load(m.filters.Filters())
	case keyReset:
		m.filters.Reset()
		m.syncFilterRevision()
	case keyRetry:
		m.current().Refetch()
		m.setResult(m.current().Result())
	case keyDown, keyJ:
		m.scroll++
		m.clampScroll()
	case keyUp, keyK:
		m.scroll--
		m.clampScroll()
	}
	return m, nil
}

func (m BrowserModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.state = ViewStateBrowse
		return m, nil
	case keyReset:
		m.filters.Reset()
		m.panel.load(filter.State{})
		m.syncFilterRevision()
		return m, nil
	case keyEnter:
		next, err := m.panel.state()
		if err != nil {
			m.panel.err = err.Error()
			return m, nil
		}
		applyFilter(m.filters, next)
		m.syncFilterRevision()
		m.state = ViewStateBrowse
		if m.mode != ModeAll {
			return m.toggleMode()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.update(msg)
	return m, cmd
}

func (m BrowserModel) quit() (tea.Model, tea.Cmd) {
	m.state = ViewStateQuitting
	logging.FromContext(m.ctx).Debug().Ctx(m.ctx).Msg("browser quitting")
	return m, tea.Quit
}

func (m *BrowserModel) gotoPage(page int) {
	m.page = page
	m.scroll = 0
	m.paged.SetOptions(m.queries.Paged(m.pageQuery()))
	m.pagedResult = m.paged.Result()
}

func (m BrowserModel) toggleMode() (tea.Model, tea.Cmd) {
	m.scroll = 0
	if m.mode == ModeAll {
		m.mode = ModePaged
		m.pagedResult = m.paged.Result()
		return m, nil
	}

	m.mode = ModeAll
	if m.all != nil {
		m.allResult = m.all.Result()
		return m, nil
	}
	m.all = m.client.Observe(m.ctx, m.queries.All())
	m.allResult = m.all.Result()
	return m, waitForUpdate(ModeAll, m.all)
}

// syncFilterRevision resets scrolling when the filter changed.
func (m *BrowserModel) syncFilterRevision() {
	if rev := m.filters.Revision(); rev != m.filterRev {
		m.filterRev = rev
		m.scroll = 0
	}
}

func (m BrowserModel) pageQuery() people.PageQuery {
	return people.PageQuery{Page: m.page, Results: m.results, Seed: m.seed}
}

func (m BrowserModel) current() *query.Observer[*person.Page] {
	if m.mode == ModeAll {
		return m.all
	}
	return m.paged
}

// Result returns the result behind the grid.
func (m BrowserModel) Result() query.Result[*person.Page] {
	if m.mode == ModeAll {
		return m.allResult
	}
	return m.pagedResult
}

func (m *BrowserModel) setResult(r query.Result[*person.Page]) {
	if m.mode == ModeAll {
		m.allResult = r
	} else {
		m.pagedResult = r
	}
}

// Visible returns the people shown in the grid. In ModeAll the filter applies.
func (m BrowserModel) Visible() []person.Person {
	res := m.Result()
	if !res.HasData() || res.Data == nil {
		return nil
	}
	if m.mode == ModeAll {
		return filter.Apply(m.filters.Filters(), res.Data.Results)
	}
	return res.Data.Results
}

// Cols returns the current column count.
func (m BrowserModel) Cols() int {
	return m.cols
}

// Page returns the current page number.
func (m BrowserModel) Page() int {
	return m.page
}

// Mode returns the current browse mode.
func (m BrowserModel) Mode() Mode {
	return m.mode
}

// State returns the current view state.
func (m BrowserModel) State() ViewState {
	return m.state
}

func (m BrowserModel) visibleRows() int {
	return max(1, (m.height-borderPadding*2)/cardHeight)
}

func (m *BrowserModel) clampScroll() {
	cols := max(m.cols, 1)
	rows := (len(m.Visible()) + cols - 1) / cols
	m.scroll = min(m.scroll, rows-m.visibleRows())
	m.scroll = max(m.scroll, 0)
}

// Run starts the interactive browser and blocks until the user quits.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	m := NewBrowserModel(ctx, deps)

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen(), tea.WithReportFocus()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(BrowserModel); ok {
		m = fm
	}
	m.Close()
	return err
}
