package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

// Governor caps total admitted calls per calendar day across all keys.
//
// The threshold read and the increment are separate store operations, so
// under heavy concurrency the cap may be exceeded by at most the number
// of in-flight requests. The cap is a cost-control valve, not a hard
// resource limit, and the overshoot is accepted.
type Governor struct {
	store    CounterStore
	limit    int64
	failOpen bool
	timeout  time.Duration
}

// NewGovernor creates a Governor instance
func NewGovernor(store CounterStore, limit int64, failOpen bool, timeout time.Duration) (*Governor, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("wrong global limit %d", limit)
	}
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	return &Governor{store: store, limit: limit, failOpen: failOpen, timeout: timeout}, nil
}

// CheckAndIncrement admits or rejects one call for the day given by today.
// Store failures resolve by the configured fail-open/fail-closed policy.
func (g *Governor) CheckAndIncrement(ctx context.Context, today string) error {
	ctx, cancelF := context.WithTimeout(ctx, g.timeout)
	defer cancelF()

	current, err := g.store.Count(ctx, today)
	if err != nil {
		return g.failed(ctx, fmt.Errorf("get global counter: %w", err))
	}
	if current >= g.limit {
		log.Ctx(ctx).Info().Int64("calls", current).Str("day", today).Msg("global daily limit reached")
		return model.ErrGlobalLimitReached
	}
	if err := g.store.Increment(ctx, today); err != nil {
		return g.failed(ctx, fmt.Errorf("increment global counter: %w", err))
	}
	return nil
}

func (g *Governor) failed(ctx context.Context, err error) error {
	if g.failOpen {
		log.Ctx(ctx).Warn().Err(err).Msg("global quota store unavailable, admitting (fail-open)")
		return nil
	}
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
