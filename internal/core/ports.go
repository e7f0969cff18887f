package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KVStore implementations when no value
// exists for the requested key
var ErrKeyNotFound = errors.New("key not found")

// LLMClient defines the interface for interacting with LLM services.
// Implementations send the prompt and return the raw model text; prompt
// construction and response validation belong to the classification engine.
type LLMClient interface {
	// Generate sends a prompt to the model and returns its raw text response
	Generate(ctx context.Context, prompt string) (string, error)
}

// KVStore defines a key-scoped string store used to persist feedback logs
type KVStore interface {
	// Get retrieves the value for a key, or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value under a key, replacing any previous value
	Set(ctx context.Context, key string, value string) error

	// Delete removes a key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// FeedbackSource provides read access to a user's correction history
type FeedbackSource interface {
	// Load returns the user's feedback log, newest first. Missing or
	// corrupt persisted data yields an empty log, never an error.
	Load(ctx context.Context, userID string) []FeedbackEntry
}

// FeedbackRepository is the full contract of the per-user feedback store
type FeedbackRepository interface {
	FeedbackSource

	// Save records a user correction for a message, evicting any prior
	// entry with the same normalized sender and identical subject
	Save(ctx context.Context, msg *Message, corrected Category, userID string) (FeedbackEntry, error)

	// Delete removes the entry with the given timestamp; a missing
	// timestamp is a no-op
	Delete(ctx context.Context, timestamp int64, userID string) error
}

// MailClient defines the operations the triage core needs from a mail provider
type MailClient interface {
	// FetchUnread returns up to limit unread inbox messages
	FetchUnread(ctx context.Context, limit int64) ([]Message, error)

	// SendReply sends a reply to the given message in its thread
	SendReply(ctx context.Context, msg *Message, body string) error

	// MarkRead marks the given message IDs as read
	MarkRead(ctx context.Context, ids []string) error

	// Archive removes the given message IDs from the inbox
	Archive(ctx context.Context, ids []string) error

	// GetUserProfile returns the authenticated user's email address
	GetUserProfile(ctx context.Context) (string, error)
}
