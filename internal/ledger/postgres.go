package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/keystone-gtm/icp-discovery/internal/dedupe"
	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// Pool is the subset of pgxpool.Pool the Postgres store needs.
// pgxmock satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ledger (
	segment        TEXT NOT NULL,
	org_key        TEXT NOT NULL,
	organization   TEXT NOT NULL,
	region         TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'active',
	tier           TEXT NOT NULL,
	score          INTEGER NOT NULL DEFAULT 0,
	evidence_url   TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	first_added    TIMESTAMPTZ NOT NULL,
	last_validated TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (segment, org_key)
);

CREATE INDEX IF NOT EXISTS idx_ledger_tier ON ledger(segment, tier);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Members(ctx context.Context, segment model.Segment) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT org_key FROM ledger WHERE segment = $1`,
		string(segment),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: members %s", segment)
	}
	defer rows.Close()

	members := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, eris.Wrap(err, "postgres: scan member")
		}
		members[key] = struct{}{}
	}
	return members, eris.Wrap(rows.Err(), "postgres: members iterate")
}

const postgresUpsert = `
INSERT INTO ledger (segment, org_key, organization, region, status, tier, score, evidence_url, notes, first_added, last_validated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (segment, org_key) DO UPDATE SET
	organization   = excluded.organization,
	region         = excluded.region,
	status         = excluded.status,
	tier           = excluded.tier,
	score          = excluded.score,
	evidence_url   = excluded.evidence_url,
	notes          = excluded.notes,
	last_validated = excluded.last_validated`

func (s *PostgresStore) Upsert(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin upsert")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	for _, e := range entries {
		firstAdded := e.FirstAdded
		if firstAdded.IsZero() {
			firstAdded = now
		}
		lastValidated := e.LastValidated
		if lastValidated.IsZero() {
			lastValidated = now
		}
		_, err := tx.Exec(ctx, postgresUpsert,
			string(e.Segment), dedupe.Normalize(e.Organization), e.Organization,
			e.Region, e.Status, string(e.Tier), e.Score, e.EvidenceURL, e.Notes,
			firstAdded, lastValidated,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert %s", e.Organization)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit upsert")
}

func (s *PostgresStore) List(ctx context.Context, segment model.Segment) ([]model.LedgerEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT organization, segment, region, status, tier, score, evidence_url, notes, first_added, last_validated
		 FROM ledger WHERE segment = $1 ORDER BY organization`,
		string(segment),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s", segment)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var (
			e         model.LedgerEntry
			seg, tier string
		)
		err := rows.Scan(&e.Organization, &seg, &e.Region, &e.Status,
			&tier, &e.Score, &e.EvidenceURL, &e.Notes, &e.FirstAdded, &e.LastValidated)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		e.Segment = model.Segment(seg)
		e.Tier = model.Tier(tier)
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list iterate")
}

func (s *PostgresStore) Counts(ctx context.Context) (map[model.Segment]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT segment, COUNT(*) FROM ledger GROUP BY segment`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: counts")
	}
	defer rows.Close()

	counts := make(map[model.Segment]int)
	for rows.Next() {
		var seg string
		var n int64
		if err := rows.Scan(&seg, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan count")
		}
		counts[model.Segment(seg)] = int(n)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: counts iterate")
}
