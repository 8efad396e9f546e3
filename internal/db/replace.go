package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReplaceConfig defines a partition replace: rows whose PartitionColumn is in
// Partitions are deleted before the new rows are copied in. A nil Partitions
// slice with an empty PartitionColumn replaces the whole table.
type ReplaceConfig struct {
	Table           string
	Columns         []string
	PartitionColumn string
	Partitions      []int
	// IncludeNull also deletes rows whose partition is null.
	IncludeNull bool
}

// ReplacePartitions deletes the loaded partitions and copies rows in, in one
// transaction. Readers never see a partition half loaded.
func ReplacePartitions(ctx context.Context, pool Pool, cfg ReplaceConfig, rows [][]any) (int64, error) {
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if sql, args := deleteSQL(cfg); sql != "" {
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
		}
	}

	n, err := CopyFrom(ctx, tx, cfg.Table, cfg.Columns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}

func deleteSQL(cfg ReplaceConfig) (string, []any) {
	table := sanitizeTable(cfg.Table)
	if cfg.PartitionColumn == "" {
		return "DELETE FROM " + table, nil
	}

	col := pgx.Identifier{cfg.PartitionColumn}.Sanitize()
	switch {
	case len(cfg.Partitions) > 0 && cfg.IncludeNull:
		return fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1) OR %s IS NULL", table, col, col), []any{cfg.Partitions}
	case len(cfg.Partitions) > 0:
		return fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1)", table, col), []any{cfg.Partitions}
	case cfg.IncludeNull:
		return fmt.Sprintf("DELETE FROM %s WHERE %s IS NULL", table, col), nil
	default:
		return "", nil
	}
}
