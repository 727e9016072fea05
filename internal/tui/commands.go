package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/throttle"
)

// ResizeInterval is how often terminal resizes are applied to the grid.
const ResizeInterval = time.Second

// queryUpdatedMsg reports that an observer's result changed.
type queryUpdatedMsg struct {
	mode Mode
	obs  *query.Observer[*person.Page]
}

// resizedMsg is a throttled terminal size.
type resizedMsg tea.WindowSizeMsg

// waitForUpdate blocks until o signals a change. It returns nil once o is closed.
func waitForUpdate(mode Mode, o *query.Observer[*person.Page]) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-o.Updates(); !ok {
			return nil
		}
		return queryUpdatedMsg{mode: mode, obs: o}
	}
}

// resizer samples window sizes through a trailing-edge throttle.
type resizer struct {
	in      chan tea.WindowSizeMsg
	out     chan tea.WindowSizeMsg
	done    chan struct{}
	release func()
}

func newResizer(ctx context.Context, interval time.Duration) *resizer {
	r := &resizer{
		in:   make(chan tea.WindowSizeMsg, 1),
		out:  make(chan tea.WindowSizeMsg, 1),
		done: make(chan struct{}),
	}
	r.release = throttle.Listen(ctx, r.in, interval, func(m tea.WindowSizeMsg) {
		replaceLatest(r.out, m)
	})
	return r
}

// push hands m to the throttle without blocking the update loop.
func (r *resizer) push(m tea.WindowSizeMsg) {
	replaceLatest(r.in, m)
}

// wait returns a command delivering the next throttled size.
func (r *resizer) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case m := <-r.out:
			return resizedMsg(m)
		case <-r.done:
			return nil
		}
	}
}

func (r *resizer) stop() {
	select {
	case <-r.done:
		return
	default:
	}
	close(r.done)
	r.release()
}

// replaceLatest sends v on a one-slot channel, replacing an unread value.
func replaceLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
