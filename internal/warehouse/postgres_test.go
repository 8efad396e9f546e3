package warehouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/census-tidy/internal/reshape"
)

func populationTable(rows ...[]any) *reshape.Table {
	return &reshape.Table{
		Schema: reshape.Schema{
			Name: "population_by_age",
			Columns: []reshape.Column{
				{Name: "state", Kind: reshape.KindText},
				{Name: "year", Kind: reshape.KindYear},
				{Name: "age_group", Kind: reshape.KindText},
				{Name: "population_percent", Kind: reshape.KindPercent},
			},
			Key:       []string{"state", "year", "age_group"},
			Partition: "year",
		},
		Rows: rows,
	}
}

var populationColumns = []string{"state", "year", "age_group", "population_percent"}

func TestPostgres_ReplaceByYear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "acs"."population_by_age" WHERE "year" = ANY\(\$1\)$`).
		WithArgs([]int{2022, 2023}).
		WillReturnResult(pgxmock.NewResult("DELETE", 18))
	mock.ExpectCopyFrom(pgx.Identifier{"acs", "population_by_age"}, populationColumns).WillReturnResult(2)
	mock.ExpectCommit()

	sink := NewPostgres(mock, ModeReplace)
	n, err := sink.WriteTable(context.Background(), populationTable(
		[]any{"Ohio", 2022, "Under 5 years", 0.055},
		[]any{"Ohio", 2023, "Under 5 years", 0.054},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReplaceIncludesNullYear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`WHERE "year" = ANY\(\$1\) OR "year" IS NULL`).
		WithArgs([]int{2023}).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"acs", "population_by_age"}, populationColumns).WillReturnResult(2)
	mock.ExpectCommit()

	sink := NewPostgres(mock, ModeReplace)
	_, err = sink.WriteTable(context.Background(), populationTable(
		[]any{"Ohio", 2023, "Under 5 years", 0.054},
		[]any{"Ohio", nil, "Under 5 years", 0.05},
	))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_acs_population_by_age"}, populationColumns).WillReturnResult(1)
	mock.ExpectExec(`ON CONFLICT \("state", "year", "age_group"\)`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	sink := NewPostgres(mock, ModeUpsert)
	n, err := sink.WriteTable(context.Background(), populationTable(
		[]any{"Ohio", 2023, "Under 5 years", 0.054},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM").WithArgs([]int{2023}).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"acs", "population_by_age"}, populationColumns).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	sink := NewPostgres(mock, ModeReplace)
	_, err = sink.WriteTable(context.Background(), populationTable(
		[]any{"Ohio", 2023, "Under 5 years", 0.054},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse: replace acs.population_by_age")
	assert.NoError(t, mock.ExpectationsWereMet())
}
