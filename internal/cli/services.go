package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/peoplegrid/internal/cache"
	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/logging"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// services are the long-lived collaborators built from the configuration.
type services struct {
	api     *randomuser.Client
	client  *query.Client[*person.Page]
	queries *people.Queries
	filters *filter.Store
	disk    *cache.FileStore
	logger  zerolog.Logger
}

func (a *appState) baseLogger() zerolog.Logger {
	if a.logResult == nil {
		return zerolog.Nop()
	}
	return a.logResult.Logger
}

// newServices wires the API client, the query cache (with the disk store behind it
// when enabled) and a fresh filter store.
func (a *appState) newServices() (*services, error) {
	cfg := a.cfg
	base := a.baseLogger()

	api := randomuser.New(
		randomuser.WithBaseURL(cfg.API.BaseURL),
		randomuser.WithTimeout(cfg.API.Timeout),
		randomuser.WithUserAgent(cfg.API.UserAgent),
		randomuser.WithRateLimit(cfg.API.RequestsPerSecond),
		randomuser.WithLogger(logging.ComponentLogger(base, "randomuser")),
	)

	qcfg := query.Config{
		GCTime:     cfg.Query.GCTime,
		MaxEntries: cfg.Query.MaxEntries,
		Logger:     logging.ComponentLogger(base, "query"),
	}

	var disk *cache.FileStore
	if cfg.Cache.Enabled {
		if err := cfg.EnsureCacheDir(); err != nil {
			return nil, err
		}
		store, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds)
		if err != nil {
			return nil, fmt.Errorf("opening disk cache: %w", err)
		}
		if n, err := store.CleanupExpired(); err == nil && n > 0 {
			logger.Debug().Int("removed", n).Msg("pruned expired cache entries")
		}
		disk = store
		qcfg.Persister = store
	}

	return &services{
		api:     api,
		client:  query.NewClient[*person.Page](qcfg),
		queries: people.NewQueries(api, cfg.Query.StaleTime),
		filters: filter.NewStore(),
		disk:    disk,
		logger:  base,
	}, nil
}
