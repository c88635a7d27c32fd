// Package convstore persists conversations in the secure key-value store.
// The underlying storage is a flat KV with no query capability, so the
// store maintains its own id index. An older schema kept a full dump of
// every conversation under one key; that legacy view is still readable and
// can be folded into the current layout with MigrateLegacy.
package convstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kaiwa-ai/kaiwa/src/keyval"
)

// ErrNotFound indicates no conversation exists for the given id.
var ErrNotFound = errors.New("conversation not found")

// Store is the conversation store.
type Store struct {
	kv     keyval.Store
	logger *slog.Logger
}

// NewStore creates a conversation store over the given KV backend.
func NewStore(kv keyval.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger.With("component", "convstore")}
}

func recordKey(id string) string {
	return keyval.KeyConversationPrefix + id
}

// Save upserts the conversation's primary record and adds its id to the
// index if newly seen. Writes are sequential and idempotent; a failure
// leaves at most the later write unapplied.
func (s *Store) Save(ctx context.Context, conv *Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey(conv.ID), string(data)); err != nil {
		return &keyval.StorageError{Operation: "save conversation", Key: recordKey(conv.ID), Err: err}
	}

	ids, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == conv.ID {
			return nil
		}
	}
	ids = append(ids, conv.ID)
	return s.saveIndex(ctx, ids)
}

// GetByID returns the conversation for id. When the primary record is
// absent, the legacy full-dump view is scanned so older installs don't
// lose data.
func (s *Store) GetByID(ctx context.Context, id string) (*Conversation, error) {
	raw, ok, err := s.kv.Get(ctx, recordKey(id))
	if err != nil {
		return nil, &keyval.StorageError{Operation: "get conversation", Key: recordKey(id), Err: err}
	}
	if ok {
		var conv Conversation
		if err := json.Unmarshal([]byte(raw), &conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
		}
		return &conv, nil
	}

	legacy, err := s.loadLegacy(ctx)
	if err != nil {
		return nil, err
	}
	for i := range legacy {
		if legacy[i].ID == id {
			return &legacy[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ListAll returns all conversations ordered by UpdatedAt descending.
// Index entries that fail to resolve are skipped. When no index exists at
// all, the legacy view is returned instead.
func (s *Store) ListAll(ctx context.Context) ([]*Conversation, error) {
	ids, ok, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		legacy, err := s.loadLegacy(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]*Conversation, 0, len(legacy))
		for i := range legacy {
			out = append(out, &legacy[i])
		}
		sortByUpdated(out)
		return out, nil
	}

	out := make([]*Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := s.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			s.logger.Warn("skipping unreadable conversation", "id", id, "error", err)
			continue
		}
		out = append(out, conv)
	}
	sortByUpdated(out)
	return out, nil
}

// Delete removes the conversation from the primary records, the index,
// and the legacy view. Deletion across representations is non-atomic.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, recordKey(id)); err != nil {
		return &keyval.StorageError{Operation: "delete conversation", Key: recordKey(id), Err: err}
	}

	ids, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) != len(ids) {
		if err := s.saveIndex(ctx, kept); err != nil {
			return err
		}
	}

	legacy, err := s.loadLegacy(ctx)
	if err != nil {
		return err
	}
	filtered := legacy[:0]
	for _, conv := range legacy {
		if conv.ID != id {
			filtered = append(filtered, conv)
		}
	}
	if len(filtered) != len(legacy) {
		return s.saveLegacy(ctx, filtered)
	}
	return nil
}

// MigrateLegacy folds the legacy full-dump view into per-id records and
// the index, then removes it. Conversations that already have a primary
// record keep it; the legacy copy is discarded. Returns the number of
// conversations imported.
func (s *Store) MigrateLegacy(ctx context.Context) (int, error) {
	legacy, err := s.loadLegacy(ctx)
	if err != nil {
		return 0, err
	}
	if len(legacy) == 0 {
		return 0, nil
	}

	imported := 0
	for i := range legacy {
		conv := &legacy[i]
		_, ok, err := s.kv.Get(ctx, recordKey(conv.ID))
		if err != nil {
			return imported, &keyval.StorageError{Operation: "migrate conversation", Key: recordKey(conv.ID), Err: err}
		}
		if ok {
			// Primary record wins over the legacy copy.
			continue
		}
		if err := s.Save(ctx, conv); err != nil {
			return imported, err
		}
		imported++
	}

	if err := s.kv.Delete(ctx, keyval.KeyConversationHistory); err != nil {
		return imported, &keyval.StorageError{Operation: "remove legacy history", Key: keyval.KeyConversationHistory, Err: err}
	}
	s.logger.Info("migrated legacy conversation history", "imported", imported, "total", len(legacy))
	return imported, nil
}

func sortByUpdated(convs []*Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}

// index returns the id index and whether it exists at all.
func (s *Store) index(ctx context.Context) ([]string, bool, error) {
	raw, ok, err := s.kv.Get(ctx, keyval.KeyConversationIndex)
	if err != nil {
		return nil, false, &keyval.StorageError{Operation: "load index", Key: keyval.KeyConversationIndex, Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, fmt.Errorf("failed to decode conversation index: %w", err)
	}
	return ids, true, nil
}

func (s *Store) loadIndex(ctx context.Context) ([]string, error) {
	ids, _, err := s.index(ctx)
	return ids, err
}

func (s *Store) saveIndex(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode conversation index: %w", err)
	}
	if err := s.kv.Set(ctx, keyval.KeyConversationIndex, string(data)); err != nil {
		return &keyval.StorageError{Operation: "save index", Key: keyval.KeyConversationIndex, Err: err}
	}
	return nil
}

func (s *Store) loadLegacy(ctx context.Context) ([]Conversation, error) {
	raw, ok, err := s.kv.Get(ctx, keyval.KeyConversationHistory)
	if err != nil {
		return nil, &keyval.StorageError{Operation: "load legacy history", Key: keyval.KeyConversationHistory, Err: err}
	}
	if !ok {
		return nil, nil
	}
	var convs []Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return nil, fmt.Errorf("failed to decode legacy history: %w", err)
	}
	return convs, nil
}

func (s *Store) saveLegacy(ctx context.Context, convs []Conversation) error {
	data, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("failed to encode legacy history: %w", err)
	}
	if err := s.kv.Set(ctx, keyval.KeyConversationHistory, string(data)); err != nil {
		return &keyval.StorageError{Operation: "save legacy history", Key: keyval.KeyConversationHistory, Err: err}
	}
	return nil
}
