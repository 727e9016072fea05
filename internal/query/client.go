package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Client defaults.
const (
	DefaultGCTime          = 5 * time.Minute
	DefaultMaxEntries      = 256
	DefaultRetryBackoffMin = time.Second
	DefaultRetryBackoffMax = 30 * time.Second
)

// Fetcher loads the data for one query.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options describe one query.
type Options[T any] struct {
	Key Key
	Fn  Fetcher[T]

	// Retry is the number of extra attempts after the first failure.
	Retry int
	// RetryIf, when set, restricts retries to errors it accepts.
	RetryIf func(error) bool

	// KeepPreviousData keeps showing the previous key's data while a new key loads.
	KeepPreviousData bool
	// RefetchOnWindowFocus refetches stale data when Client.WindowFocused is called.
	RefetchOnWindowFocus bool
	// StaleTime is how long fetched data is served without a new call.
	StaleTime time.Duration
	// Disabled keeps an observer idle until it is enabled.
	Disabled bool
}

// Persister is an optional second-level store that outlives the process.
type Persister interface {
	Load(key string) (json.RawMessage, time.Time, error)
	Save(key string, data json.RawMessage) error
}

// Config configures a Client.
type Config struct {
	// GCTime is how long a result stays in memory after it was fetched.
	GCTime time.Duration
	// MaxEntries bounds the number of cached keys.
	MaxEntries int

	RetryBackoffMin time.Duration
	RetryBackoffMax time.Duration

	Persister Persister
	Logger    zerolog.Logger
}

type entry[T any] struct {
	data      T
	updatedAt time.Time
}

// Client caches query results of type T and coalesces concurrent fetches per key.
type Client[T any] struct {
	entries   *expirable.LRU[string, entry[T]]
	group     singleflight.Group
	persister Persister
	logger    zerolog.Logger

	backoffMin time.Duration
	backoffMax time.Duration

	mu        sync.Mutex
	observers map[*Observer[T]]struct{}

	now func() time.Time
}

// NewClient returns a Client with cfg applied over the defaults.
func NewClient[T any](cfg Config) *Client[T] {
	if cfg.GCTime <= 0 {
		cfg.GCTime = DefaultGCTime
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.RetryBackoffMin <= 0 {
		cfg.RetryBackoffMin = DefaultRetryBackoffMin
	}
	if cfg.RetryBackoffMax < cfg.RetryBackoffMin {
		cfg.RetryBackoffMax = max(DefaultRetryBackoffMax, cfg.RetryBackoffMin)
	}

	return &Client[T]{
		entries:    expirable.NewLRU[string, entry[T]](cfg.MaxEntries, nil, cfg.GCTime),
		persister:  cfg.Persister,
		logger:     cfg.Logger,
		backoffMin: cfg.RetryBackoffMin,
		backoffMax: cfg.RetryBackoffMax,
		observers:  make(map[*Observer[T]]struct{}),
		now:        time.Now,
	}
}

// Fetch returns fresh cached data for opts.Key or runs the query. Concurrent calls for
// the same key share one run. If ctx ends first, Fetch returns ctx.Err() but the shared
// run continues and still populates the cache.
func (c *Client[T]) Fetch(ctx context.Context, opts Options[T]) (T, error) {
	if e, ok := c.lookup(opts.Key); ok && c.isFresh(e, opts.StaleTime) {
		c.logger.Debug().Ctx(ctx).Str("key", opts.Key.String()).Msg("cache hit")
		return e.data, nil
	}
	return c.fetch(ctx, opts)
}

// Peek returns cached data for key without fetching.
func (c *Client[T]) Peek(key Key) (T, bool) {
	e, ok := c.lookup(key)
	return e.data, ok
}

// Invalidate drops the cached data for key and refetches it for active observers.
func (c *Client[T]) Invalidate(key Key) {
	c.entries.Remove(key.String())
	for _, o := range c.activeObservers() {
		if o.currentKey() == key {
			o.Refetch()
		}
	}
}

// Clear drops all cached data held in memory.
func (c *Client[T]) Clear() {
	c.entries.Purge()
}

// Len returns the number of cached keys.
func (c *Client[T]) Len() int {
	return c.entries.Len()
}

// WindowFocused refetches stale data for observers that opted into it.
func (c *Client[T]) WindowFocused() {
	for _, o := range c.activeObservers() {
		o.refetchOnFocus()
	}
}

func (c *Client[T]) fetch(ctx context.Context, opts Options[T]) (T, error) {
	var zero T
	if opts.Fn == nil {
		return zero, errors.New("query: nil fetch function")
	}

	key := opts.Key.String()
	// Callers that go away must not cancel the shared run.
	runCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.run(runCtx, opts)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug().Ctx(ctx).Str("key", key).Msg("joined in-flight fetch")
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// run executes opts.Fn with retries and stores a successful result.
func (c *Client[T]) run(ctx context.Context, opts Options[T]) (T, error) {
	var zero T
	key := opts.Key.String()

	for attempt := 0; ; attempt++ {
		data, err := opts.Fn(ctx)
		if err == nil {
			c.store(opts.Key, data)
			c.logger.Debug().Ctx(ctx).Str("key", key).Int("attempts", attempt+1).Msg("fetch succeeded")
			return data, nil
		}

		if attempt >= opts.Retry || (opts.RetryIf != nil && !opts.RetryIf(err)) {
			c.logger.Warn().Ctx(ctx).Err(err).Str("key", key).Int("attempts", attempt+1).Msg("fetch failed")
			return zero, &FetchError{Key: opts.Key, Attempts: attempt + 1, Err: err}
		}

		wait := retryablehttp.DefaultBackoff(c.backoffMin, c.backoffMax, attempt, nil)
		c.logger.Debug().Ctx(ctx).Err(err).
			Str("key", key).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("fetch failed, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, &FetchError{Key: opts.Key, Attempts: attempt + 1, Err: ctx.Err()}
		}
	}
}

func (c *Client[T]) store(key Key, data T) {
	now := c.now()
	c.entries.Add(key.String(), entry[T]{data: data, updatedAt: now})

	if c.persister == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("cannot encode result for persistence")
		return
	}
	if err := c.persister.Save(key.String(), raw); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("cannot persist result")
	}
}

// lookup checks memory, then the persister. Persisted hits are promoted to memory.
func (c *Client[T]) lookup(key Key) (entry[T], bool) {
	if e, ok := c.entries.Get(key.String()); ok {
		return e, true
	}
	if c.persister == nil {
		return entry[T]{}, false
	}

	raw, updatedAt, err := c.persister.Load(key.String())
	if err != nil {
		return entry[T]{}, false
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Debug().Err(err).Str("key", key.String()).Msg("discarding unreadable persisted result")
		return entry[T]{}, false
	}
	e := entry[T]{data: data, updatedAt: updatedAt}
	c.entries.Add(key.String(), e)
	return e, true
}

func (c *Client[T]) isFresh(e entry[T], staleTime time.Duration) bool {
	return staleTime > 0 && c.now().Sub(e.updatedAt) < staleTime
}

func (c *Client[T]) register(o *Observer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers[o] = struct{}{}
}

func (c *Client[T]) unregister(o *Observer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.observers, o)
}

func (c *Client[T]) activeObservers() []*Observer[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Observer[T], 0, len(c.observers))
	for o := range c.observers {
		out = append(out, o)
	}
	return out
}
