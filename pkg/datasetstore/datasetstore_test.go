package datasetstore

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"transit/pkg/domain"
)

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}
func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}
func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}
func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}
func (a *pgxMockAdapter) Close()                          { a.mock.Close() }
func (a *pgxMockAdapter) Ping(ctx context.Context) error { return a.mock.Ping(ctx) }

func setupMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock, New(&pgxMockAdapter{mock: mock})
}

func TestLatestHash_ReturnsHashWhenPresent(t *testing.T) {
	mock, store := setupMockStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT content_hash FROM datasets`).
		WillReturnRows(pgxmock.NewRows([]string{"content_hash"}).AddRow("abc123"))

	hash, err := store.LatestHash(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc123", hash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestHash_NoRowsYieldsErrNoDataset(t *testing.T) {
	mock, store := setupMockStore(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT content_hash FROM datasets`).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.LatestHash(context.Background())
	require.ErrorIs(t, err, ErrNoDataset)
}

func TestUpsert_CommitsOnSuccess(t *testing.T) {
	mock, store := setupMockStore(t)
	defer mock.Close()

	d := domain.Dataset{
		ID:          "d1",
		ContentHash: "hash1",
		Mode:        domain.ModeReal,
		Quality:     95,
		Stops: []domain.Stop{
			{ID: "s1", Name: "Stop One", City: "якутск", Coordinates: domain.Coordinates{Lat: 62, Lon: 129.7}, Transport: domain.TransportBus},
		},
		Routes: []domain.Route{
			{ID: "r1", FromStopID: "s1", ToStopID: "s2", Transport: domain.TransportBus, Duration: 45 * time.Minute},
		},
		FetchedAt: time.Now(),
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO stops`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO routes`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO datasets`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.Upsert(context.Background(), d)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_RollsBackOnStopFailure(t *testing.T) {
	mock, store := setupMockStore(t)
	defer mock.Close()

	d := domain.Dataset{
		Stops: []domain.Stop{{ID: "s1", Name: "Stop One", City: "якутск"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO stops`).WillReturnError(pgx.ErrTxClosed)
	mock.ExpectRollback()

	err := store.Upsert(context.Background(), d)
	require.Error(t, err)
}
