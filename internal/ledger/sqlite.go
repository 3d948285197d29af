package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/keystone-gtm/icp-discovery/internal/dedupe"
	"github.com/keystone-gtm/icp-discovery/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	first_added    DATETIME NOT NULL,
	last_validated DATETIME NOT NULL,
	PRIMARY KEY (segment, org_key)
);

CREATE INDEX IF NOT EXISTS idx_ledger_segment ON ledger(segment);
CREATE INDEX IF NOT EXISTS idx_ledger_tier ON ledger(segment, tier);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Members(ctx context.Context, segment model.Segment) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT org_key FROM ledger WHERE segment = ?`,
		string(segment),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: members %s", segment)
	}
	defer rows.Close()

	members := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan member")
		}
		members[key] = struct{}{}
	}
	return members, eris.Wrap(rows.Err(), "sqlite: members iterate")
}

func (s *SQLiteStore) Upsert(ctx context.Context, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger (segment, org_key, organization, region, status, tier, score, evidence_url, notes, first_added, last_validated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (segment, org_key) DO UPDATE SET
			organization   = excluded.organization,
			region         = excluded.region,
			status         = excluded.status,
			tier           = excluded.tier,
			score          = excluded.score,
			evidence_url   = excluded.evidence_url,
			notes          = excluded.notes,
			last_validated = excluded.last_validated`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

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
		_, err := stmt.ExecContext(ctx,
			string(e.Segment), dedupe.Normalize(e.Organization), e.Organization,
			e.Region, e.Status, string(e.Tier), e.Score, e.EvidenceURL, e.Notes,
			firstAdded, lastValidated,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert %s", e.Organization)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert")
}

func (s *SQLiteStore) List(ctx context.Context, segment model.Segment) ([]model.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT organization, segment, region, status, tier, score, evidence_url, notes, first_added, last_validated
		 FROM ledger WHERE segment = ? ORDER BY organization`,
		string(segment),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", segment)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		err := rows.Scan(&e.Organization, &e.Segment, &e.Region, &e.Status,
			&e.Tier, &e.Score, &e.EvidenceURL, &e.Notes, &e.FirstAdded, &e.LastValidated)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list iterate")
}

func (s *SQLiteStore) Counts(ctx context.Context) (map[model.Segment]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT segment, COUNT(*) FROM ledger GROUP BY segment`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: counts")
	}
	defer rows.Close()

	counts := make(map[model.Segment]int)
	for rows.Next() {
		var seg string
		var n int
		if err := rows.Scan(&seg, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan count")
		}
		counts[model.Segment(seg)] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: counts iterate")
}
