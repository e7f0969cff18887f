package core

import (
	"strings"
)

// DefaultRetrievalLimit is the number of feedback entries injected into a
// classification prompt
const DefaultRetrievalLimit = 5

// NormalizeSender reduces a raw "Display Name <address>" sender string to a
// lowercased address. When no bracketed address is present the raw string is
// lowercased and trimmed instead. This is the sole matching key for both
// relevance retrieval and duplicate eviction; display names never
// participate in matching.
func NormalizeSender(sender string) string {
	start := strings.LastIndex(sender, "<")
	end := strings.LastIndex(sender, ">")
	if start >= 0 && end > start {
		return strings.ToLower(strings.TrimSpace(sender[start+1 : end]))
	}
	return strings.ToLower(strings.TrimSpace(sender))
}

// RelevantFeedback selects the past corrections germane to classifying the
// target message. Relevance is binary: an entry matches only when its
// normalized sender equals the target's normalized sender. The log is
// newest first, so the filtered slice needs no re-sort; it is truncated to
// limit. The first returned entry is the one surfaced as used context.
func RelevantFeedback(target *Message, log []FeedbackEntry, limit int) []FeedbackEntry {
	if target == nil || limit <= 0 {
		return nil
	}

	key := NormalizeSender(target.Sender)

	var matched []FeedbackEntry
	for _, entry := range log {
		if NormalizeSender(entry.Sender) == key {
			matched = append(matched, entry)
			if len(matched) == limit {
				break
			}
		}
	}

	return matched
}
