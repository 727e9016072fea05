// Package people defines the named queries the application runs against the
// random-user API and the policies attached to each.
package people

import (
	"context"
	"time"

	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// Retry policies per query shape.
const (
	PagedRetry    = 1
	AllRetry      = 3
	ByGenderRetry = 1
)

// Key prefixes.
const (
	pagedKey    = "persons"
	allKey      = "all-persons"
	byGenderKey = "persons-by-gender"
)

// API is the subset of the random-user client the queries need.
type API interface {
	FetchPage(ctx context.Context, p randomuser.Params) (*person.Page, error)
	FetchByGender(ctx context.Context, g person.Gender) (*person.Page, error)
}

// Queries builds query options bound to one API client.
type Queries struct {
	api       API
	staleTime time.Duration
}

// NewQueries returns the query set. staleTime applies to every shape.
func NewQueries(api API, staleTime time.Duration) *Queries {
	return &Queries{api: api, staleTime: staleTime}
}

// PageQuery is a page of results. Every field takes part in the cache key, so a page
// is only ever served for the parameters that produced it.
type PageQuery struct {
	Page    int
	Results int
	Seed    string
}

// Paged returns the paged query: no refetch on focus, previous page kept visible while
// the next one loads, one retry.
func (q *Queries) Paged(pq PageQuery) query.Options[*person.Page] {
	if pq.Results == 0 {
		pq.Results = randomuser.DefaultResults
	}
	return query.Options[*person.Page]{
		Key: query.NewKey(pagedKey, pq.Page, pq.Results, pq.Seed),
		Fn: func(ctx context.Context) (*person.Page, error) {
			return q.api.FetchPage(ctx, randomuser.Params{Page: pq.Page, Results: pq.Results, Seed: pq.Seed})
		},
		Retry:                PagedRetry,
		RetryIf:              randomuser.IsRetryable,
		KeepPreviousData:     true,
		RefetchOnWindowFocus: false,
		StaleTime:            q.staleTime,
	}
}

// All returns the single large batch used for client-side filtering: no refetch on
// focus, three retries.
func (q *Queries) All() query.Options[*person.Page] {
	return query.Options[*person.Page]{
		Key: query.NewKey(allKey),
		Fn: func(ctx context.Context) (*person.Page, error) {
			return q.api.FetchPage(ctx, randomuser.Params{})
		},
		Retry:                AllRetry,
		RetryIf:              randomuser.IsRetryable,
		RefetchOnWindowFocus: false,
		StaleTime:            q.staleTime,
	}
}

// ByGender returns the server-filtered query. It is disabled while g is unset.
func (q *Queries) ByGender(g person.Gender) query.Options[*person.Page] {
	return query.Options[*person.Page]{
		Key: query.NewKey(byGenderKey, string(g)),
		Fn: func(ctx context.Context) (*person.Page, error) {
			return q.api.FetchByGender(ctx, g)
		},
		Retry:                ByGenderRetry,
		RetryIf:              randomuser.IsRetryable,
		RefetchOnWindowFocus: false,
		StaleTime:            q.staleTime,
		Disabled:             !g.IsSet(),
	}
}
