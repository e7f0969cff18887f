package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bracketed address",
			input:    "Bob <bob@x.com>",
			expected: "bob@x.com",
		},
		{
			name:     "bracketed address with mixed case",
			input:    "Bob <Bob@X.com>",
			expected: "bob@x.com",
		},
		{
			name:     "raw address",
			input:    "bob@x.com",
			expected: "bob@x.com",
		},
		{
			name:     "raw address uppercased",
			input:    "BOB@X.COM",
			expected: "bob@x.com",
		},
		{
			name:     "surrounding whitespace",
			input:    "  bob@x.com  ",
			expected: "bob@x.com",
		},
		{
			name:     "display name with nested brackets keeps last pair",
			input:    "Bob <spoof> <bob@x.com>",
			expected: "bob@x.com",
		},
		{
			name:     "no address at all",
			input:    "Bob",
			expected: "bob",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSender(tt.input))
		})
	}
}

func TestRelevantFeedback_SenderMatching(t *testing.T) {
	log := []FeedbackEntry{
		{Sender: "Robert <bob@x.com>", Subject: "Lunch", UserClassification: CategoryPersonal, Timestamp: 9},
		{Sender: "Bob <bob@y.com>", Subject: "Lunch", UserClassification: CategoryNotPersonal, Timestamp: 8},
		{Sender: "bob@x.com", Subject: "Invoice", UserClassification: CategoryNotPersonal, Timestamp: 7},
	}

	target := &Message{Sender: "Bob <bob@x.com>"}

	got := RelevantFeedback(target, log, 5)

	// Address match is what counts, display names and domains are not fuzzy
	assert.Len(t, got, 2)
	assert.Equal(t, "Lunch", got[0].Subject)
	assert.Equal(t, "Invoice", got[1].Subject)
	for _, entry := range got {
		assert.Equal(t, "bob@x.com", NormalizeSender(entry.Sender))
	}
}

func TestRelevantFeedback_LimitAndOrder(t *testing.T) {
	// Log is newest first; retrieval must preserve that order
	log := []FeedbackEntry{
		{Sender: "a@x.com", Subject: "S1", UserClassification: CategoryPersonal, Timestamp: 5},
		{Sender: "a@x.com", Subject: "S2", UserClassification: CategoryNotPersonal, Timestamp: 3},
	}

	target := &Message{Sender: "a@x.com"}

	got := RelevantFeedback(target, log, 1)
	assert.Len(t, got, 1)
	assert.Equal(t, "S1", got[0].Subject)
	assert.Equal(t, int64(5), got[0].Timestamp)

	got = RelevantFeedback(target, log, 10)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].Timestamp)
	assert.Equal(t, int64(3), got[1].Timestamp)
}

func TestRelevantFeedback_NoMatches(t *testing.T) {
	log := []FeedbackEntry{
		{Sender: "a@x.com", Subject: "S1", Timestamp: 1},
	}

	got := RelevantFeedback(&Message{Sender: "other@x.com"}, log, 5)
	assert.Empty(t, got)

	got = RelevantFeedback(&Message{Sender: "a@x.com"}, nil, 5)
	assert.Empty(t, got)
}

func TestRelevantFeedback_ZeroLimit(t *testing.T) {
	log := []FeedbackEntry{
		{Sender: "a@x.com", Subject: "S1", Timestamp: 1},
	}

	assert.Empty(t, RelevantFeedback(&Message{Sender: "a@x.com"}, log, 0))
	assert.Empty(t, RelevantFeedback(nil, log, 5))
}
