package query

import (
	"context"
	"errors"
	"sync"
)

// Observer follows one query at a time on behalf of a consumer. The consumer reads
// Result whenever Updates fires and re-renders from it.
type Observer[T any] struct {
	client *Client[T]
	ctx    context.Context

	mu      sync.Mutex
	opts    Options[T]
	started bool
	result  Result[T]
	// gen changes whenever a started load becomes irrelevant (key switch, refetch, close).
	gen     uint64
	closed  bool
	updates chan struct{}
}

// Observe starts observing opts. ctx supplies values (logger, trace id) to the fetches
// the observer starts; its cancellation is ignored, use Close to detach.
func (c *Client[T]) Observe(ctx context.Context, opts Options[T]) *Observer[T] {
	o := &Observer[T]{
		client:  c,
		ctx:     context.WithoutCancel(ctx),
		updates: make(chan struct{}, 1),
	}
	c.register(o)
	o.SetOptions(opts)
	return o
}

// Result returns the current snapshot.
func (o *Observer[T]) Result() Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Updates signals that Result changed. Signals are coalesced; the channel is closed
// by Close.
func (o *Observer[T]) Updates() <-chan struct{} {
	return o.updates
}

// SetOptions switches the observed query. Passing options with the same key only
// updates the options; a new key starts loading it.
func (o *Observer[T]) SetOptions(opts Options[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	sameKey := o.started && o.opts.Key == opts.Key
	wasDisabled := o.opts.Disabled
	o.opts = opts
	o.started = true

	if sameKey && !(wasDisabled && !opts.Disabled) {
		return
	}
	o.switchKeyLocked()
}

// Refetch fetches the current key again, ignoring staleness.
func (o *Observer[T]) Refetch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || !o.started || o.opts.Disabled {
		return
	}
	o.result.IsFetching = true
	if o.result.Status == StatusError || o.result.Status == StatusIdle {
		if o.result.HasData() {
			o.result.Status = StatusSuccess
		} else {
			o.result.Status = StatusLoading
		}
		o.result.Err = nil
	}
	o.startLoadLocked()
}

// Close detaches the observer. Results of fetches still running are discarded.
func (o *Observer[T]) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.gen++
	close(o.updates)
	o.mu.Unlock()

	o.client.unregister(o)
}

func (o *Observer[T]) currentKey() Key {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts.Key
}

func (o *Observer[T]) refetchOnFocus() {
	o.mu.Lock()
	opts := o.opts
	res := o.result
	o.mu.Unlock()

	if !opts.RefetchOnWindowFocus || res.IsFetching {
		return
	}
	if e, ok := o.client.lookup(opts.Key); ok && o.client.isFresh(e, opts.StaleTime) {
		return
	}
	o.Refetch()
}

func (o *Observer[T]) switchKeyLocked() {
	prev := o.result
	o.gen++

	if e, ok := o.client.lookup(o.opts.Key); ok {
		o.result = Result[T]{Status: StatusSuccess, Data: e.data, UpdatedAt: e.updatedAt}
		if !o.opts.Disabled && !o.client.isFresh(e, o.opts.StaleTime) {
			o.result.IsFetching = true
			o.startLoadLocked()
		}
		o.notifyLocked()
		return
	}

	switch {
	case o.opts.Disabled:
		o.result = Result[T]{Status: StatusIdle}
		if o.opts.KeepPreviousData && prev.HasData() {
			o.result = Result[T]{Status: StatusSuccess, Data: prev.Data, IsPlaceholder: true, UpdatedAt: prev.UpdatedAt}
		}
	case o.opts.KeepPreviousData && prev.HasData():
		o.result = Result[T]{
			Status:        StatusSuccess,
			Data:          prev.Data,
			IsPlaceholder: true,
			IsFetching:    true,
			UpdatedAt:     prev.UpdatedAt,
		}
		o.startLoadLocked()
	default:
		o.result = Result[T]{Status: StatusLoading, IsFetching: true}
		o.startLoadLocked()
	}
	o.notifyLocked()
}

func (o *Observer[T]) startLoadLocked() {
	gen := o.gen
	opts := o.opts
	go o.load(gen, opts)
}

func (o *Observer[T]) load(gen uint64, opts Options[T]) {
	data, err := o.client.fetch(o.ctx, opts)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || gen != o.gen || o.opts.Key != opts.Key {
		return
	}

	if err != nil {
		res := Result[T]{Status: StatusError, Err: err, FailureCount: attemptsOf(err)}
		if !o.result.IsPlaceholder && o.result.HasData() {
			res.Data = o.result.Data
			res.UpdatedAt = o.result.UpdatedAt
		}
		o.result = res
	} else {
		o.result = Result[T]{Status: StatusSuccess, Data: data, UpdatedAt: o.client.now()}
		if e, ok := o.client.entries.Peek(opts.Key.String()); ok {
			o.result.UpdatedAt = e.updatedAt
		}
	}
	o.notifyLocked()
}

func (o *Observer[T]) notifyLocked() {
	if o.closed {
		return
	}
	select {
	case o.updates <- struct{}{}:
	default:
	}
}

func attemptsOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Attempts
	}
	return 1
}
