package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"smokebuddy/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// counterStateID is the primary key of the only row in counter_state.
const counterStateID = 1

// CreateTableSQL provisions the counter_state table. It is idempotent and is
// applied by EnsureSchema on startup.
const CreateTableSQL = `CREATE TABLE IF NOT EXISTS counter_state (
	id        INTEGER PRIMARY KEY,
	date      TEXT    NOT NULL,
	today     BIGINT  NOT NULL CHECK (today >= 0),
	yesterday BIGINT  NOT NULL CHECK (yesterday >= 0),
	streak    BIGINT  NOT NULL CHECK (streak >= 0)
)`

const selectStateSQL = `SELECT date, today, yesterday, streak FROM counter_state WHERE id = $1`

const upsertStateSQL = `INSERT INTO counter_state (id, date, today, yesterday, streak)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		date = EXCLUDED.date,
		today = EXCLUDED.today,
		yesterday = EXCLUDED.yesterday,
		streak = EXCLUDED.streak`

// PostgresStore keeps the record as a single row of counter_state.
type PostgresStore struct {
	db DBTX
}

// Compile-time assertion that PostgresStore implements types.CounterRepository.
var _ types.CounterRepository = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore backed by the given connection
// (pool or transaction).
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the counter_state table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, CreateTableSQL); err != nil {
		return types.NewStorageError("failed to create counter_state table", err)
	}
	return nil
}

// Load reads the row, inserting the default record when it does not exist.
func (s *PostgresStore) Load(ctx context.Context, defaultDate string) (*types.CounterRecord, error) {
	var rec types.CounterRecord
	err := s.db.QueryRow(ctx, selectStateSQL, counterStateID).Scan(
		&rec.Date,
		&rec.Today,
		&rec.Yesterday,
		&rec.Streak,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		def := types.NewCounterRecord(defaultDate)
		if err := s.Save(ctx, def); err != nil {
			return nil, err
		}
		return def, nil
	}
	if err != nil {
		return nil, types.NewStorageError("failed to load counter state", err)
	}
	if err := validateRecord(&rec); err != nil {
		return nil, types.NewStorageError("stored counter state is invalid", err)
	}
	return &rec, nil
}

// Save upserts the row.
func (s *PostgresStore) Save(ctx context.Context, rec *types.CounterRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, upsertStateSQL,
		counterStateID,
		rec.Date,
		rec.Today,
		rec.Yesterday,
		rec.Streak,
	)
	if err != nil {
		return types.NewStorageError("failed to save counter state", err)
	}
	return nil
}

// Name identifies the store in health checks.
func (s *PostgresStore) Name() string { return "state_postgres" }

// Check runs a trivial query against the database.
func (s *PostgresStore) Check(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}
