package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// sqliteBatchRows bounds the rows of one multi-row INSERT, keeping the bound
// parameters under SQLite's limit for the widest fact table.
const sqliteBatchRows = 500

// SQLite writes tables into a local SQLite file, one table per schema.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at path and configures WAL mode.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

// WriteTable creates the table if needed, then replaces the partitions
// present in t inside one transaction.
func (s *SQLite) WriteTable(ctx context.Context, t *reshape.Table) (int64, error) {
	name := t.Schema.Name
	if _, err := s.db.ExecContext(ctx, createTableSQL(t.Schema)); err != nil {
		return 0, eris.Wrapf(err, "sqlite: create table %s", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	q, args, err := sqliteDeleteSQL(t)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: build delete for %s", name)
	}
	if q != "" {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: delete from %s", name)
		}
	}

	cols := quoteEach(t.Schema.ColumnNames())
	var n int64
	for start := 0; start < len(t.Rows); start += sqliteBatchRows {
		end := min(start+sqliteBatchRows, len(t.Rows))
		ins := sq.Insert(quoteIdent(name)).Columns(cols...)
		for _, row := range t.Rows[start:end] {
			ins = ins.Values(row...)
		}
		q, args, err := ins.ToSql()
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: build insert for %s", name)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert into %s", name)
		}
		n += int64(end - start)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func sqliteType(k reshape.Kind) string {
	switch k {
	case reshape.KindYear, reshape.KindCount:
		return "INTEGER"
	case reshape.KindPercent, reshape.KindAmount:
		return "REAL"
	default:
		return "TEXT"
	}
}

func createTableSQL(s reshape.Schema) string {
	defs := make([]string, 0, len(s.Columns)+1)
	for _, c := range s.Columns {
		defs = append(defs, quoteIdent(c.Name)+" "+sqliteType(c.Kind))
	}
	if len(s.Key) > 0 {
		defs = append(defs, "UNIQUE ("+strings.Join(quoteEach(s.Key), ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(s.Name), strings.Join(defs, ",\n\t"))
}

func sqliteDeleteSQL(t *reshape.Table) (string, []any, error) {
	del := sq.Delete(quoteIdent(t.Schema.Name))
	if t.Schema.Partition == "" {
		return del.ToSql()
	}

	years, hasNull := partitionYears(t)
	col := quoteIdent(t.Schema.Partition)
	var cond sq.Or
	if len(years) > 0 {
		cond = append(cond, sq.Eq{col: years})
	}
	if hasNull {
		cond = append(cond, sq.Eq{col: nil})
	}
	if len(cond) == 0 {
		return "", nil, nil
	}
	return del.Where(cond).ToSql()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteEach(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return quoted
}
