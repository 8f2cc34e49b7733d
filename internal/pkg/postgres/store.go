package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/model"
	"github.com/sahara-wellness/backend/internal/pkg/quota"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

// Store keeps quota records in postgres
type Store struct {
	db *sqlx.DB
}

// NewStore creates Store instance
func NewStore(db *sqlx.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db}, nil
}

// Update implements quota.KeyStore. The row lock taken by
// SELECT ... FOR UPDATE serializes concurrent updates per key.
func (s *Store) Update(ctx context.Context, key string, f func(r *quota.KeyRecord) error) error {
	ctx, span := utils.StartSpan(ctx, "postgres.Update")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(tx)

	var row keyRow
	err = tx.GetContext(ctx, &row, `
		SELECT key, daily_limit, usage_count, last_used_date
		FROM api_keys
		WHERE key = $1
		FOR UPDATE`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrNoRecord
		}
		return mapPgErr(fmt.Errorf("get key record: %w", err))
	}

	rec := toKeyRecord(&row)
	if err := f(rec); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE api_keys
		SET usage_count = $1,
			last_used_date = $2,
			updated = $3
		WHERE key = $4`, rec.UsageCount, rec.LastUsedDate, time.Now(), key)
	if err != nil {
		return mapPgErr(fmt.Errorf("update key record: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return mapPgErr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Count implements quota.CounterStore
func (s *Store) Count(ctx context.Context, day string) (int64, error) {
	var res int64
	err := s.db.GetContext(ctx, &res, `SELECT call_count FROM usage_stats WHERE day = $1`, day)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get global counter: %w", err)
	}
	return res, nil
}

// Increment implements quota.CounterStore with an atomic upsert
func (s *Store) Increment(ctx context.Context, day string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_stats (day, call_count)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET call_count = usage_stats.call_count + 1`, day)
	if err != nil {
		return fmt.Errorf("increment global counter: %w", err)
	}
	return nil
}

// CreateKey inserts a new API key record
func (s *Store) CreateKey(ctx context.Context, key string, limit int64) error {
	log.Ctx(ctx).Debug().Msg("insert new key")
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, key, daily_limit, usage_count, created, updated)
		VALUES ($1, $2, $3, 0, $4, $4)`, uuid.NewString(), key, limit, now)
	if err != nil {
		return fmt.Errorf("create key: %w", err)
	}
	return nil
}

// ListKeys returns all API key records
func (s *Store) ListKeys(ctx context.Context) ([]*quota.KeyRecord, error) {
	var rows []keyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT key, daily_limit, usage_count, last_used_date
		FROM api_keys
		ORDER BY created`)
	if err != nil {
		return nil, fmt.Errorf("select keys: %w", err)
	}
	res := make([]*quota.KeyRecord, 0, len(rows))
	for i := range rows {
		res = append(res, toKeyRecord(&rows[i]))
	}
	return res, nil
}

// toKeyRecord maps a row, keeping a NULL daily_limit distinct from a
// stored zero
func toKeyRecord(row *keyRow) *quota.KeyRecord {
	return &quota.KeyRecord{Key: row.Key,
		DailyLimit: row.DailyLimit.Int64, HasLimit: row.DailyLimit.Valid,
		UsageCount: row.UsageCount, LastUsedDate: utils.NormalizeDay(row.LastUsedDate.String)}
}

func rollback(tx *sqlx.Tx) {
	err := tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		log.Warn().Err(err).Msg("rollback failed")
	}
}

// 40001 serialization_failure, 40P01 deadlock_detected
func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return model.ErrContention
	}
	return err
}
