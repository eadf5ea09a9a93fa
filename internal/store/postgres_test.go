package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

func TestPostgresStore_Load_Existing(t *testing.T) {
	db := new(mockDBTX)
	s := NewPostgresStore(db)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "2026-02-06"
			*dest[1].(*int) = 4
			*dest[2].(*int) = 9
			*dest[3].(*int) = 1
			return nil
		},
	}
	db.On("QueryRow", mock.Anything, selectStateSQL, []any{counterStateID}).Return(row)

	rec, err := s.Load(context.Background(), "2026-02-07")
	require.NoError(t, err)
	assert.Equal(t, types.CounterRecord{Date: "2026-02-06", Today: 4, Yesterday: 9, Streak: 1}, *rec)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostgresStore_Load_InsertsDefault(t *testing.T) {
	db := new(mockDBTX)
	s := NewPostgresStore(db)

	db.On("QueryRow", mock.Anything, selectStateSQL, mock.Anything).Return(&mockRow{scanErr: pgx.ErrNoRows})
	db.On("Exec", mock.Anything, upsertStateSQL, []any{counterStateID, "2026-02-06", 0, 0, 0}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	rec, err := s.Load(context.Background(), "2026-02-06")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-06", rec.Date)
	db.AssertExpectations(t)
}

func TestPostgresStore_Load_QueryError(t *testing.T) {
	db := new(mockDBTX)
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	_, err := NewPostgresStore(db).Load(context.Background(), "2026-02-06")
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
}

func TestPostgresStore_Load_InvalidRow(t *testing.T) {
	db := new(mockDBTX)
	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "yesterday"
			return nil
		},
	}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	_, err := NewPostgresStore(db).Load(context.Background(), "2026-02-06")
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
}

func TestPostgresStore_Save_Upserts(t *testing.T) {
	db := new(mockDBTX)
	rec := &types.CounterRecord{Date: "2026-02-06", Today: 3, Yesterday: 5, Streak: 2}

	db.On("Exec", mock.Anything, upsertStateSQL, []any{counterStateID, "2026-02-06", 3, 5, 2}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	require.NoError(t, NewPostgresStore(db).Save(context.Background(), rec))
	db.AssertExpectations(t)
}

func TestPostgresStore_Save_ExecError(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("deadlock detected"))

	err := NewPostgresStore(db).Save(context.Background(), types.NewCounterRecord("2026-02-06"))
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
}

func TestCreateTableSQL_WideCounters(t *testing.T) {
	for _, col := range []string{"today", "yesterday", "streak"} {
		assert.Regexp(t, `(?m)^\s*`+col+`\s+BIGINT\s+NOT NULL`, CreateTableSQL)
	}
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, CreateTableSQL, []any(nil)).Return(pgconn.NewCommandTag("CREATE TABLE"), nil)

	require.NoError(t, NewPostgresStore(db).EnsureSchema(context.Background()))
	db.AssertExpectations(t)
}
