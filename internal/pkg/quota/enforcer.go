package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

// Enforcer validates an API key and advances its daily usage counter.
type Enforcer struct {
	store        KeyStore
	defaultLimit int64
	timeout      time.Duration
}

// NewEnforcer creates an Enforcer instance
func NewEnforcer(store KeyStore, defaultLimit int64, timeout time.Duration) (*Enforcer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if defaultLimit <= 0 {
		return nil, fmt.Errorf("wrong default limit %d", defaultLimit)
	}
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	return &Enforcer{store: store, defaultLimit: defaultLimit, timeout: timeout}, nil
}

// CheckAndConsume admits or rejects one call for key on the day given by
// today (ISO date string). On admit exactly one usage unit is recorded.
// A contention abort is retried once with the same today value; a second
// abort is treated as store failure.
func (e *Enforcer) CheckAndConsume(ctx context.Context, key, today string) error {
	if key == "" {
		return model.ErrMissingKey
	}
	ctx, cancelF := context.WithTimeout(ctx, e.timeout)
	defer cancelF()

	err := e.consume(ctx, key, today)
	if errors.Is(err, model.ErrContention) {
		log.Ctx(ctx).Debug().Msg("quota transaction aborted, retrying once")
		err = e.consume(ctx, key, today)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNoRecord), errors.Is(err, model.ErrQuotaExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
}

func (e *Enforcer) consume(ctx context.Context, key, today string) error {
	return e.store.Update(ctx, key, func(r *KeyRecord) error {
		limit := r.DailyLimit
		if !r.HasLimit {
			limit = e.defaultLimit
		}
		usage := r.UsageCount
		// day boundary by date string comparison, not elapsed time
		if r.LastUsedDate < today {
			usage = 0
		}
		if usage >= limit {
			return model.ErrQuotaExceeded
		}
		r.UsageCount = usage + 1
		r.LastUsedDate = today
		return nil
	})
}
