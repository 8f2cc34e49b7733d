// Package quota implements daily API usage accounting: a per-key
// enforcer backed by a transactional record store and a global governor
// backed by a daily counter. Both are composed into an admission
// pipeline evaluated before any business logic runs.
//
// The pipeline does not deduplicate repeated admissions for the same
// logical request. An upstream retry consumes a fresh quota unit.
package quota

import "context"

type (
	// KeyRecord is the persisted usage state of one API key.
	// UsageCount is meaningful only relative to LastUsedDate: a record
	// last used before today counts as unused.
	// HasLimit tells a stored DailyLimit apart from an absent one: a
	// stored zero means the key is disabled, an absent value falls back
	// to the configured default.
	KeyRecord struct {
		Key          string
		DailyLimit   int64
		HasLimit     bool
		UsageCount   int64
		LastUsedDate string
	}

	// KeyStore provides atomic read-modify-write over one key record.
	KeyStore interface {
		// Update runs f on the record identified by key within a
		// transaction. When f returns an error no write happens and the
		// error is passed through. Returns model.ErrNoRecord for an
		// unknown key and model.ErrContention when a concurrent writer
		// aborted the transaction.
		Update(ctx context.Context, key string, f func(r *KeyRecord) error) error
	}

	// CounterStore provides the global daily call counter.
	CounterStore interface {
		Count(ctx context.Context, day string) (int64, error)
		Increment(ctx context.Context, day string) error
	}
)
