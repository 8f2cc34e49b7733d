package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sahara-wellness/backend/internal/pkg/model"
	"github.com/sahara-wellness/backend/internal/pkg/quota"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

const (
	keysCol      = "api_keys"
	usageCol     = "usage_stats"
	usersCol     = "users"
	entriesCol   = "entries"
	resourcesCol = "resources"

	callCountField = "api_calls"
)

// Store communicates with Firestore
type Store struct {
	client *firestore.Client
}

// NewStore creates Store instance
func NewStore(ctx context.Context, project string) (*Store, error) {
	if project == "" {
		return nil, fmt.Errorf("project is empty")
	}
	log.Ctx(ctx).Debug().Str("project", project).Msg("Connecting to Firestore")
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Update implements quota.KeyStore on the api_keys collection.
// The read, the callback and the conditional write run in one Firestore
// transaction, serialized per document.
func (s *Store) Update(ctx context.Context, key string, f func(r *quota.KeyRecord) error) error {
	ctx, span := utils.StartSpan(ctx, "firestore.Update")
	defer span.End()

	ref := s.client.Collection(keysCol).Doc(key)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return model.ErrNoRecord
			}
			return fmt.Errorf("get key record: %w", err)
		}
		r := toKeyRecord(key, snap.Data())
		if err := f(r); err != nil {
			return err
		}
		return tx.Set(ref, map[string]interface{}{
			"usage":     r.UsageCount,
			"last_used": r.LastUsedDate,
		}, firestore.MergeAll)
	}, firestore.MaxAttempts(1))
	return mapTxErr(err)
}

func mapTxErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNoRecord) || errors.Is(err, model.ErrQuotaExceeded) {
		return err
	}
	if status.Code(err) == codes.Aborted {
		return model.ErrContention
	}
	return err
}

// toKeyRecord coerces a raw key document. Records are created
// administratively and old ones may hold a timestamp in last_used.
func toKeyRecord(key string, data map[string]interface{}) *quota.KeyRecord {
	res := &quota.KeyRecord{Key: key}
	if v, ok := data["daily_limit"].(int64); ok {
		res.DailyLimit, res.HasLimit = v, true
	}
	if v, ok := data["usage"].(int64); ok {
		res.UsageCount = v
	}
	switch v := data["last_used"].(type) {
	case string:
		res.LastUsedDate = utils.NormalizeDay(v)
	case time.Time:
		res.LastUsedDate = utils.Day(v)
	}
	return res
}

// Count implements quota.CounterStore
func (s *Store) Count(ctx context.Context, day string) (int64, error) {
	snap, err := s.client.Collection(usageCol).Doc(day).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("get global counter: %w", err)
	}
	res, _ := snap.Data()[callCountField].(int64)
	return res, nil
}

// Increment implements quota.CounterStore. The counter document for a
// new day is created implicitly by the merge write.
func (s *Store) Increment(ctx context.Context, day string) error {
	_, err := s.client.Collection(usageCol).Doc(day).Set(ctx, map[string]interface{}{
		callCountField: firestore.Increment(1),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("increment global counter: %w", err)
	}
	return nil
}

// CreateKey inserts a new API key record
func (s *Store) CreateKey(ctx context.Context, key string, limit int64) error {
	ref := s.client.Collection(keysCol).Doc(key)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			return fmt.Errorf("key exists")
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(ref, map[string]interface{}{
			"daily_limit": limit,
			"usage":       int64(0),
			"created":     firestore.ServerTimestamp,
		})
	})
	if err != nil {
		return fmt.Errorf("create key: %w", err)
	}
	return nil
}

// ListKeys returns all API key records
func (s *Store) ListKeys(ctx context.Context) ([]*quota.KeyRecord, error) {
	it := s.client.Collection(keysCol).Documents(ctx)
	defer it.Stop()

	var res []*quota.KeyRecord
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate keys: %w", err)
		}
		res = append(res, toKeyRecord(snap.Ref.ID, snap.Data()))
	}
	return res, nil
}
