package quota

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

func newTestPipeline(t *testing.T, store *memStore, globalLimit int64) *Pipeline {
	t.Helper()
	e, err := NewEnforcer(store, 50, time.Second)
	require.NoError(t, err)
	g, err := NewGovernor(store, globalLimit, false, time.Second)
	require.NoError(t, err)
	p, err := NewPipeline(e, g)
	require.NoError(t, err)
	return p
}

func TestNewPipeline_Fails(t *testing.T) {
	store := newMemStore()
	e, _ := NewEnforcer(store, 50, time.Second)
	g, _ := NewGovernor(store, 10, false, time.Second)
	_, err := NewPipeline(nil, g)
	assert.Error(t, err)
	_, err = NewPipeline(e, nil)
	assert.Error(t, err)
}

func TestAdmit_PerKeyFirst(t *testing.T) {
	store := newMemStore()
	p := newTestPipeline(t, store, 10)

	err := p.Admit(context.Background(), "", tDay, true)
	assert.ErrorIs(t, err, model.ErrMissingKey)
	assert.Equal(t, 0, store.countCalls)

	err = p.Admit(context.Background(), "no-such", tDay, true)
	assert.ErrorIs(t, err, model.ErrNoRecord)
	assert.Equal(t, 0, store.countCalls)
}

func TestAdmit_GlobalSkippedWithoutFlag(t *testing.T) {
	store := newMemStore()
	store.records["abc"] = &KeyRecord{Key: "abc", DailyLimit: 5, HasLimit: true}
	p := newTestPipeline(t, store, 10)

	assert.NoError(t, p.Admit(context.Background(), "abc", tDay, false))
	assert.Equal(t, 0, store.countCalls)
	assert.Equal(t, int64(0), store.counts[tDay])
}

func TestAdmit_GlobalConsulted(t *testing.T) {
	store := newMemStore()
	store.records["abc"] = &KeyRecord{Key: "abc", DailyLimit: 5, HasLimit: true}
	p := newTestPipeline(t, store, 10)

	assert.NoError(t, p.Admit(context.Background(), "abc", tDay, true))
	assert.Equal(t, int64(1), store.counts[tDay])
}

// Two keys with remaining per-key budget are jointly capped by the
// global ceiling.
func TestAdmit_GlobalCapIndependentOfKeys(t *testing.T) {
	store := newMemStore()
	store.records["k1"] = &KeyRecord{Key: "k1", DailyLimit: 300, HasLimit: true}
	store.records["k2"] = &KeyRecord{Key: "k2", DailyLimit: 300, HasLimit: true}
	p := newTestPipeline(t, store, 240)

	for i := 0; i < 240; i++ {
		key := fmt.Sprintf("k%d", i%2+1)
		require.NoError(t, p.Admit(context.Background(), key, tDay, true))
	}
	err := p.Admit(context.Background(), "k1", tDay, true)
	assert.ErrorIs(t, err, model.ErrGlobalLimitReached)
	err = p.Admit(context.Background(), "k2", tDay, true)
	assert.ErrorIs(t, err, model.ErrGlobalLimitReached)
}

func TestAdmit_QuotaExceededShortCircuits(t *testing.T) {
	store := newMemStore()
	store.records["abc"] = &KeyRecord{Key: "abc", DailyLimit: 1, HasLimit: true, UsageCount: 1, LastUsedDate: tDay}
	p := newTestPipeline(t, store, 10)

	err := p.Admit(context.Background(), "abc", tDay, true)
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)
	assert.Equal(t, 0, store.countCalls)
}
