// Package ledger persists the master record of discovered organizations,
// keyed by normalized organization name within a segment. The pipeline
// consumes only the membership set for duplicate suppression and upserts
// accepted rows after a run.
package ledger

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/keystone-gtm/icp-discovery/internal/config"
	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// Store defines the ledger persistence interface.
type Store interface {
	// Members returns the set of normalized organization names already
	// recorded for a segment. A segment with no entries yields an empty
	// set, not an error.
	Members(ctx context.Context, segment model.Segment) (map[string]struct{}, error)

	// Upsert inserts or refreshes entries keyed by (segment, normalized
	// name). Existing rows keep their FirstAdded timestamp.
	Upsert(ctx context.Context, entries []model.LedgerEntry) error

	// List returns every entry for a segment in organization order.
	List(ctx context.Context, segment model.Segment) ([]model.LedgerEntry, error)

	// Counts returns the number of entries per segment.
	Counts(ctx context.Context) (map[model.Segment]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the configured Store and runs migrations.
func Open(ctx context.Context, cfg config.LedgerConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "", "sqlite":
		store, err = NewSQLite(cfg.Path)
	case "postgres":
		store, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("ledger: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}
	return store, nil
}
