package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

// StartConversation loads the user's memory summary, creating the user
// document on first contact and bumping activity counters otherwise.
func (s *Store) StartConversation(ctx context.Context, userID string) (string, error) {
	ref := s.client.Collection(usersCol).Doc(userID)
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return "", fmt.Errorf("get user: %w", err)
		}
		_, err = ref.Set(ctx, map[string]interface{}{
			"created_at":         firestore.ServerTimestamp,
			"memory_summary":     "",
			"conversation_count": int64(1),
		})
		if err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
		return "", nil
	}
	_, err = ref.Set(ctx, map[string]interface{}{
		"last_active":        firestore.ServerTimestamp,
		"conversation_count": firestore.Increment(1),
	}, firestore.MergeAll)
	if err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}
	res, _ := snap.Data()["memory_summary"].(string)
	return res, nil
}

// SaveMemorySummary stores the updated one-sentence memory for a user
func (s *Store) SaveMemorySummary(ctx context.Context, userID, summary string) error {
	_, err := s.client.Collection(usersCol).Doc(userID).Set(ctx, map[string]interface{}{
		"memory_summary":     summary,
		"last_memory_update": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("save memory summary: %w", err)
	}
	return nil
}

// AddJournalEntry appends an entry document under the user
func (s *Store) AddJournalEntry(ctx context.Context, userID string, entry map[string]interface{}) error {
	ref := s.client.Collection(usersCol).Doc(userID).Collection(entriesCol).NewDoc()
	if _, err := ref.Set(ctx, entry); err != nil {
		return fmt.Errorf("add journal entry: %w", err)
	}
	return nil
}

// ListResources returns up to limit resource documents
func (s *Store) ListResources(ctx context.Context, limit int) ([]map[string]interface{}, error) {
	it := s.client.Collection(resourcesCol).Limit(limit).Documents(ctx)
	defer it.Stop()

	res := make([]map[string]interface{}, 0)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate resources: %w", err)
		}
		res = append(res, withID(snap))
	}
	return res, nil
}

// GetResource returns one resource document
func (s *Store) GetResource(ctx context.Context, id string) (map[string]interface{}, error) {
	snap, err := s.client.Collection(resourcesCol).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return withID(snap), nil
}

// CreateResource stores data under a generated ID
func (s *Store) CreateResource(ctx context.Context, data map[string]interface{}) (string, error) {
	ref := s.client.Collection(resourcesCol).NewDoc()
	if _, err := ref.Set(ctx, data); err != nil {
		return "", fmt.Errorf("create resource: %w", err)
	}
	log.Ctx(ctx).Debug().Str("id", ref.ID).Msg("resource created")
	return ref.ID, nil
}

// UpdateResource merges data into an existing resource
func (s *Store) UpdateResource(ctx context.Context, id string, data map[string]interface{}) error {
	ref := s.client.Collection(resourcesCol).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return model.ErrNoRecord
		}
		return fmt.Errorf("get resource: %w", err)
	}
	if _, err := ref.Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// DeleteResource removes an existing resource
func (s *Store) DeleteResource(ctx context.Context, id string) error {
	ref := s.client.Collection(resourcesCol).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return model.ErrNoRecord
		}
		return fmt.Errorf("get resource: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

func withID(snap *firestore.DocumentSnapshot) map[string]interface{} {
	res := snap.Data()
	if res == nil {
		res = map[string]interface{}{}
	}
	res["id"] = snap.Ref.ID
	return res
}
