package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/peoplegrid/internal/cache"
)

// newCacheCmd creates the cache command group for the on-disk result cache.
func newCacheCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the on-disk result cache"}
	cmd.AddCommand(
		newCacheActionCmd(app, "clear", "Remove every cached result", (*cache.FileStore).Clear, "Removed %d cached result(s) from %s\n"),
		newCacheActionCmd(app, "prune", "Remove expired cached results", (*cache.FileStore).CleanupExpired, "Removed %d expired result(s) from %s\n"),
		newCacheStatsCmd(app),
	)
	return cmd
}

// openDiskCache opens the cache directory whether or not caching is enabled, so
// that a disabled cache can still be cleaned up.
func (a *appState) openDiskCache() (*cache.FileStore, error) {
	store, err := cache.NewFileStore(a.cfg.Cache.Directory, true, a.cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache at %s: %w", a.cfg.Cache.Directory, err)
	}
	return store, nil
}

func newCacheActionCmd(
	app *appState,
	use, short string,
	action func(*cache.FileStore) (int, error),
	format string,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openDiskCache()
			if err != nil {
				return err
			}
			n, err := action(store)
			if err != nil {
				return err
			}
			logger.Debug().Ctx(cmd.Context()).Str("action", use).Int("removed", n).Msg("cache updated")
			cmd.Printf(format, n, store.Directory())
			return nil
		},
	}
}

func newCacheStatsCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the cache location and entry count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openDiskCache()
			if err != nil {
				return err
			}
			n, err := store.Count()
			if err != nil {
				return err
			}
			cmd.Printf("Directory: %s\nEnabled:   %t\nEntries:   %d\nTTL:       %ds\n",
				store.Directory(), app.cfg.Cache.Enabled, n, app.cfg.Cache.TTLSeconds)
			return nil
		},
	}
}
