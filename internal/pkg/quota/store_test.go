package quota

import (
	"context"
	"sync"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

// memStore is an in-memory KeyStore + CounterStore for tests.
// Update serializes on a mutex, matching the per-document transaction
// guarantee of a real store.
type memStore struct {
	lock    sync.Mutex
	records map[string]*KeyRecord
	counts  map[string]int64

	updateCalls int
	countCalls  int
	incCalls    int

	// errors injected before the real operation, consumed in order
	updateErrs []error
	countErr   error
	incErr     error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*KeyRecord{}, counts: map[string]int64{}}
}

func (s *memStore) Update(_ context.Context, key string, f func(r *KeyRecord) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.updateCalls++
	if len(s.updateErrs) > 0 {
		err := s.updateErrs[0]
		s.updateErrs = s.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	r, ok := s.records[key]
	if !ok {
		return model.ErrNoRecord
	}
	tmp := *r
	if err := f(&tmp); err != nil {
		return err
	}
	*r = tmp
	return nil
}

func (s *memStore) Count(_ context.Context, day string) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.counts[day], nil
}

func (s *memStore) Increment(_ context.Context, day string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.incCalls++
	if s.incErr != nil {
		return s.incErr
	}
	s.counts[day]++
	return nil
}
