package core

import (
	"time"
)

// Category is the triage classification of a message
type Category string

const (
	// CategoryPersonal marks direct human correspondence and actionable mail
	CategoryPersonal Category = "Personal"
	// CategoryNotPersonal marks bulk, automated, marketing and transactional mail
	CategoryNotPersonal Category = "NotPersonal"
	// CategoryUnclassified marks messages the classifier could not reach a verdict on
	CategoryUnclassified Category = "Unclassified"
)

// IsValid reports whether c is one of the two categories the model may return
func (c Category) IsValid() bool {
	return c == CategoryPersonal || c == CategoryNotPersonal
}

// Message represents an email message fetched from the mail provider.
// The classification fields (Category, Reasoning, UsedContext,
// ReclassifiedAt) are produced by the triage core; everything else is
// read-only provider data.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Snippet   string    `json:"snippet"`
	Body      string    `json:"body,omitempty"`
	Date      time.Time `json:"date"`

	Category       Category       `json:"category,omitempty"`
	Reasoning      string         `json:"reasoning,omitempty"`
	UsedContext    *FeedbackEntry `json:"usedContext,omitempty"`
	ReclassifiedAt time.Time      `json:"reclassifiedAt"`
}

// FeedbackEntry records a user correction linking a sender+subject
// fingerprint to a chosen category. Entries are immutable once created;
// the timestamp (unix milliseconds) doubles as the unique identifier.
type FeedbackEntry struct {
	Subject            string   `json:"subject"`
	Sender             string   `json:"sender"`
	Snippet            string   `json:"snippet"`
	UserClassification Category `json:"userClassification"`
	Timestamp          int64    `json:"timestamp"`
}

// ClassificationResult is the outcome of a single classification call.
// UsedContext is the feedback entry that most influenced the decision,
// surfaced for display only; the result never owns it.
type ClassificationResult struct {
	Category    Category       `json:"category"`
	Reasoning   string         `json:"reasoning"`
	UsedContext *FeedbackEntry `json:"usedContext,omitempty"`
}
