package commands

import (
	"context"

	"github.com/strukt/strukt/pkg/stores"
)

// openHistory opens and migrates the run-history store if the config names
// one. Returns nil when history is not configured.
func openHistory(ctx context.Context, cfg cliConfig) (*stores.SQLiteStore, error) {
	if cfg.HistoryDB == "" {
		return nil, nil
	}

	store, err := stores.NewSQLiteStore(stores.Config{Path: cfg.HistoryDB})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
