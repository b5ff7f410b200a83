package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/marketanalysis/internal/ohlc"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewStore(sqlxDB, 5*time.Second), mock, func() { db.Close() }
}

func TestStore_GetBars_ScansRows(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	barTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"bar_time", "open", "high", "low", "close", "volume", "has_volume"}).
		AddRow(barTime, 100.0, 105.0, 99.0, 102.0, 10.0, true)

	mock.ExpectQuery("SELECT bar_time, open, high, low, close, volume, has_volume").
		WithArgs("BTCUSD", "1D", nil, nil, 1000).
		WillReturnRows(rows)

	bars, err := store.GetBars(context.Background(), "BTCUSD", ohlc.TF1d, time.Time{}, time.Time{}, 0)

	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 102.0, bars[0].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_StoreBars_UpsertsInTransaction(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	bar := ohlc.Bar{Time: time.Now(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, HasVolume: true}

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO bars")
	mock.ExpectExec("INSERT INTO bars").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.StoreBars(context.Background(), "BTCUSD", ohlc.TF1h, []ohlc.Bar{bar}, "simulated")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_StoreBars_EmptyIsNoop(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	err := store.StoreBars(context.Background(), "BTCUSD", ohlc.TF1h, nil, "simulated")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetAvailableSymbols(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	rows := sqlmock.NewRows([]string{"symbol"}).AddRow("BTCUSD").AddRow("ETHUSD")
	mock.ExpectQuery("SELECT DISTINCT symbol FROM bars").WillReturnRows(rows)

	symbols, err := store.GetAvailableSymbols(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSD", "ETHUSD"}, symbols)
}

func TestStore_GetTimeRange(t *testing.T) {
	store, mock, closeDB := newMockStore(t)
	defer closeDB()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"min", "max"}).AddRow(start, end)
	mock.ExpectQuery("SELECT MIN\\(bar_time\\), MAX\\(bar_time\\)").
		WithArgs("BTCUSD", "1D").
		WillReturnRows(rows)

	gotStart, gotEnd, err := store.GetTimeRange(context.Background(), "BTCUSD", ohlc.TF1d)

	require.NoError(t, err)
	assert.True(t, start.Equal(gotStart))
	assert.True(t, end.Equal(gotEnd))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
}

func TestConnect_MissingDSNIsError(t *testing.T) {
	_, _, err := Connect(Config{})
	assert.Error(t, err)
}
