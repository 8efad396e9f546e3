package warehouse

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/db"
	"github.com/sells-group/census-tidy/internal/reshape"
)

// Postgres writes tables into the acs schema.
type Postgres struct {
	pool db.Pool
	mode Mode
}

// NewPostgres creates a Postgres sink. The pool stays owned by the caller.
func NewPostgres(pool db.Pool, mode Mode) *Postgres {
	return &Postgres{pool: pool, mode: mode}
}

// WriteTable upserts on the schema key in upsert mode. Otherwise, and for
// tables without a key, it replaces the partitions present in t.
func (p *Postgres) WriteTable(ctx context.Context, t *reshape.Table) (int64, error) {
	table := Schema + "." + t.Schema.Name
	cols := t.Schema.ColumnNames()

	if p.mode == ModeUpsert && len(t.Schema.Key) > 0 {
		n, err := db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
			Table:        table,
			Columns:      cols,
			ConflictKeys: t.Schema.Key,
		}, t.Rows)
		return n, eris.Wrapf(err, "warehouse: upsert %s", table)
	}

	cfg := db.ReplaceConfig{Table: table, Columns: cols}
	if t.Schema.Partition != "" {
		years, hasNull := partitionYears(t)
		cfg.PartitionColumn = t.Schema.Partition
		cfg.Partitions = years
		cfg.IncludeNull = hasNull
	}
	n, err := db.ReplacePartitions(ctx, p.pool, cfg, t.Rows)
	return n, eris.Wrapf(err, "warehouse: replace %s", table)
}

// Close is a no-op.
func (p *Postgres) Close() error { return nil }
