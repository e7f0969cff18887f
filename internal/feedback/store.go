// Package feedback implements the durable, per-user, bounded log of
// classification corrections that grounds retrieval-augmented triage.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// MaxEntries caps each user's feedback log
const MaxEntries = 100

const keyPrefix = "feedback:"

// Store persists per-user feedback logs as JSON arrays, newest first, in a
// key-scoped string store. Logs are isolated per user key; there is no
// shared-history fallback.
//
// Known limitation: concurrent writers (e.g. two browser tabs) are not
// transactionally isolated; the last full-log rewrite wins.
type Store struct {
	kv         core.KVStore
	logger     *zap.Logger
	maxEntries int
}

// NewStore creates a feedback store on top of a key-value backend.
// maxEntries <= 0 selects the default cap of 100.
func NewStore(kv core.KVStore, logger *zap.Logger, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = MaxEntries
	}
	return &Store{
		kv:         kv,
		logger:     logger,
		maxEntries: maxEntries,
	}
}

func userKey(userID string) string {
	return keyPrefix + userID
}

// Load returns the user's feedback log, newest first. Missing keys and
// corrupt persisted data both yield an empty log; classification must never
// be blocked by unreadable history.
func (s *Store) Load(ctx context.Context, userID string) []core.FeedbackEntry {
	raw, err := s.kv.Get(ctx, userKey(userID))
	if err != nil {
		if !errors.Is(err, core.ErrKeyNotFound) {
			s.logger.Warn("Failed to load feedback log, treating as empty",
				zap.String("user_id", userID),
				zap.Error(err))
		}
		return nil
	}

	var entries []core.FeedbackEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("Corrupt feedback log, treating as empty",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}

	return entries
}

// Save records a correction for a message. Any existing entry with the same
// normalized sender and identical subject is evicted first (the duplicate
// merge policy, not an error), the new entry is prepended, and the log is
// truncated to the cap by insertion order before being persisted whole.
func (s *Store) Save(ctx context.Context, msg *core.Message, corrected core.Category, userID string) (core.FeedbackEntry, error) {
	entry := core.FeedbackEntry{
		Subject:            msg.Subject,
		Sender:             msg.Sender,
		Snippet:            msg.Snippet,
		UserClassification: corrected,
		Timestamp:          time.Now().UnixMilli(),
	}

	log := s.Load(ctx, userID)

	senderKey := core.NormalizeSender(entry.Sender)
	kept := make([]core.FeedbackEntry, 0, len(log)+1)
	kept = append(kept, entry)
	for _, existing := range log {
		if core.NormalizeSender(existing.Sender) == senderKey && existing.Subject == entry.Subject {
			continue
		}
		kept = append(kept, existing)
	}

	if len(kept) > s.maxEntries {
		kept = kept[:s.maxEntries]
	}

	if err := s.persist(ctx, userID, kept); err != nil {
		return core.FeedbackEntry{}, err
	}

	s.logger.Debug("Saved feedback entry",
		zap.String("user_id", userID),
		zap.String("sender", entry.Sender),
		zap.Int("log_size", len(kept)))

	return entry, nil
}

// Delete removes the entry with the given timestamp from the user's log.
// An absent timestamp is a no-op.
func (s *Store) Delete(ctx context.Context, timestamp int64, userID string) error {
	log := s.Load(ctx, userID)

	kept := make([]core.FeedbackEntry, 0, len(log))
	for _, entry := range log {
		if entry.Timestamp == timestamp {
			continue
		}
		kept = append(kept, entry)
	}

	if len(kept) == len(log) {
		return nil
	}

	return s.persist(ctx, userID, kept)
}

func (s *Store) persist(ctx context.Context, userID string, entries []core.FeedbackEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode feedback log: %w", err)
	}
	if err := s.kv.Set(ctx, userKey(userID), string(data)); err != nil {
		return fmt.Errorf("failed to persist feedback log: %w", err)
	}
	return nil
}
