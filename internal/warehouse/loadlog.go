package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/db"
)

// Load statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// LoadEntry is a row of acs.load_log.
type LoadEntry struct {
	ID          int64          `json:"id"`
	Fact        string         `json:"fact"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsLoaded  int64          `json:"rows_loaded"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// LoadResult is passed to Complete.
type LoadResult struct {
	RowsLoaded int64
	Metadata   map[string]any
}

// LoadLog records one entry per fact load.
type LoadLog struct {
	pool db.Pool
}

// NewLoadLog creates a LoadLog backed by pool.
func NewLoadLog(pool db.Pool) *LoadLog {
	return &LoadLog{pool: pool}
}

// Start records the beginning of a load and returns its ID.
func (l *LoadLog) Start(ctx context.Context, fact string) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO acs.load_log (fact, status, started_at)
		 VALUES ($1, 'running', now()) RETURNING id`,
		fact,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "loadlog: start %s", fact)
	}
	return id, nil
}

// Complete marks a load as finished.
func (l *LoadLog) Complete(ctx context.Context, id int64, result LoadResult) error {
	var meta []byte
	if result.Metadata != nil {
		var err error
		meta, err = json.Marshal(result.Metadata)
		if err != nil {
			return eris.Wrap(err, "loadlog: marshal metadata")
		}
	}

	_, err := l.pool.Exec(ctx,
		`UPDATE acs.load_log
		 SET status = 'complete', completed_at = now(), rows_loaded = $1, metadata = $2
		 WHERE id = $3`,
		result.RowsLoaded, meta, id,
	)
	if err != nil {
		return eris.Wrapf(err, "loadlog: complete %d", id)
	}
	return nil
}

// Fail marks a load as failed.
func (l *LoadLog) Fail(ctx context.Context, id int64, msg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE acs.load_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		msg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "loadlog: fail %d", id)
	}
	return nil
}

// LastSuccess returns when the fact last loaded successfully, or nil.
func (l *LoadLog) LastSuccess(ctx context.Context, fact string) (*time.Time, error) {
	var t time.Time
	err := l.pool.QueryRow(ctx,
		`SELECT started_at FROM acs.load_log
		 WHERE fact = $1 AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		fact,
	).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "loadlog: last success for %s", fact)
	}
	return &t, nil
}

// ListAll returns entries, most recent first. limit <= 0 means all.
func (l *LoadLog) ListAll(ctx context.Context, limit int) ([]LoadEntry, error) {
	sql := `SELECT id, fact, status, started_at, completed_at, rows_loaded, error, metadata
		 FROM acs.load_log ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		sql += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := l.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "loadlog: list")
	}
	defer rows.Close()

	var entries []LoadEntry
	for rows.Next() {
		var (
			e      LoadEntry
			errStr *string
			meta   []byte
		)
		if err := rows.Scan(&e.ID, &e.Fact, &e.Status, &e.StartedAt, &e.CompletedAt, &e.RowsLoaded, &errStr, &meta); err != nil {
			return nil, eris.Wrap(err, "loadlog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		if meta != nil {
			_ = json.Unmarshal(meta, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
