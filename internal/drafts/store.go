// Package drafts persists in-progress wizard drafts to a recoverable slot.
// Persistence here is advisory: the wizard keeps working when a save or load
// fails, and the authoritative record only exists once a draft is submitted.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealerhubhq/dealerhub-backend/pkg/logger"
)

// KV is the slice of the redis client the store needs.
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DraftKey(kind, ownerID string) string
	DraftSavedAtKey(kind, ownerID string) string
}

// Snapshot is what a draft slot holds: the draft plus the step the owner was
// on, so a restored session resumes in place.
type Snapshot[D any] struct {
	Draft D   `json:"draft"`
	Step  int `json:"step"`
}

// Store saves and restores one wizard kind's drafts, keyed per owner.
type Store[D any] struct {
	kv   KV
	kind string
	ttl  time.Duration
	logg *logger.Logger
}

func NewStore[D any](kv KV, kind string, ttl time.Duration, logg *logger.Logger) (*Store[D], error) {
	if kv == nil {
		return nil, fmt.Errorf("draft kv required")
	}
	if kind == "" {
		return nil, fmt.Errorf("wizard kind required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	return &Store[D]{kv: kv, kind: kind, ttl: ttl, logg: logg}, nil
}

// Save serializes the snapshot under the owner's slot plus a human-readable
// saved-at timestamp under the sibling key.
func (s *Store[D]) Save(ctx context.Context, ownerID string, draft D, step int) error {
	payload, err := json.Marshal(Snapshot[D]{Draft: draft, Step: step})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.DraftKey(s.kind, ownerID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	savedAt := time.Now().UTC().Format(time.RFC1123)
	if err := s.kv.Set(ctx, s.kv.DraftSavedAtKey(s.kind, ownerID), savedAt, s.ttl); err != nil {
		return fmt.Errorf("save draft timestamp: %w", err)
	}
	return nil
}

// Load returns the owner's snapshot, or nil when the slot is empty. A slot
// holding unparseable JSON is discarded and treated as absent so a damaged
// draft can never wedge the wizard.
func (s *Store[D]) Load(ctx context.Context, ownerID string) (*Snapshot[D], error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(s.kind, ownerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var snapshot Snapshot[D]
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		if s.logg != nil {
			ctx := s.logg.WithFields(ctx, map[string]any{"wizard": s.kind, "owner_id": ownerID})
			s.logg.Warn(ctx, "discarding corrupt draft")
		}
		_ = s.Clear(ctx, ownerID)
		return nil, nil
	}
	return &snapshot, nil
}

// SavedAt returns the human-readable timestamp of the last save, or "" when
// no draft exists.
func (s *Store[D]) SavedAt(ctx context.Context, ownerID string) (string, error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftSavedAtKey(s.kind, ownerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("load draft timestamp: %w", err)
	}
	return raw, nil
}

// Clear removes the draft and its timestamp.
func (s *Store[D]) Clear(ctx context.Context, ownerID string) error {
	if err := s.kv.Del(ctx, s.kv.DraftKey(s.kind, ownerID), s.kv.DraftSavedAtKey(s.kind, ownerID)); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
