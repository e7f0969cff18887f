package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mikey/inbox-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLLM records prompts and returns a canned response or error
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// staticFeedback is a FeedbackSource backed by a fixed slice
type staticFeedback []FeedbackEntry

func (s staticFeedback) Load(ctx context.Context, userID string) []FeedbackEntry {
	return s
}

func newTestEngine(llm LLMClient, log []FeedbackEntry) *Engine {
	logger := zap.NewNop()
	return NewEngine(llm, staticFeedback(log), logger, utils.NewTextProcessor(logger), 5, 0)
}

func TestEngineClassify_Success(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "Personal", "reasoning": "Direct note from a colleague"}`}
	engine := newTestEngine(llm, nil)

	msg := &Message{ID: "m1", Sender: "alice@x.com", Subject: "Quick question"}
	result := engine.Classify(context.Background(), msg, "u1")

	assert.Equal(t, CategoryPersonal, result.Category)
	assert.Equal(t, "Direct note from a colleague", result.Reasoning)
	assert.Nil(t, result.UsedContext)
}

func TestEngineClassify_EmptyLogUsesNoHistoryBranch(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "NotPersonal", "reasoning": "Automated newsletter"}`}
	engine := newTestEngine(llm, nil)

	result := engine.Classify(context.Background(), &Message{Sender: "news@x.com"}, "u1")

	// Still a valid category/reasoning pair even with no history
	assert.True(t, result.Category.IsValid())
	assert.NotEmpty(t, result.Reasoning)
	assert.Contains(t, llm.lastPrompt(), noHistoryMarker)
}

func TestEngineClassify_PrecedentInjection(t *testing.T) {
	log := []FeedbackEntry{
		{Sender: "Alice <alice@x.com>", Subject: "Weekly digest", Snippet: "your weekly summary", UserClassification: CategoryNotPersonal, Timestamp: 10},
		{Sender: "bob@other.com", Subject: "Hello", UserClassification: CategoryPersonal, Timestamp: 5},
	}
	llm := &fakeLLM{response: `{"category": "NotPersonal", "reasoning": "Matches prior correction"}`}
	engine := newTestEngine(llm, log)

	msg := &Message{Sender: "ALICE@x.com", Subject: "Weekly digest #42"}
	result := engine.Classify(context.Background(), msg, "u1")

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "Weekly digest")
	assert.Contains(t, prompt, string(CategoryNotPersonal))
	assert.NotContains(t, prompt, "bob@other.com")

	require.NotNil(t, result.UsedContext)
	assert.Equal(t, int64(10), result.UsedContext.Timestamp)
}

func TestEngineClassify_ServiceFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	engine := newTestEngine(llm, nil)

	result := engine.Classify(context.Background(), &Message{Sender: "a@x.com"}, "u1")

	assert.Equal(t, CategoryUnclassified, result.Category)
	assert.Equal(t, ReasoningServiceError, result.Reasoning)
}

func TestEngineClassify_MalformedResponseSafeDefault(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "not JSON at all", response: "I think this is personal"},
		{name: "missing category", response: `{"reasoning": "looks personal"}`},
		{name: "missing reasoning", response: `{"category": "Personal"}`},
		{name: "unknown category", response: `{"category": "Spam", "reasoning": "junk"}`},
		{name: "empty response", response: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{response: tt.response}
			engine := newTestEngine(llm, nil)

			result := engine.Classify(context.Background(), &Message{Sender: "a@x.com"}, "u1")

			// Never an exception, always the safe default
			assert.Equal(t, CategoryNotPersonal, result.Category)
			assert.Equal(t, ReasoningParseFailure, result.Reasoning)
		})
	}
}

func TestEngineClassify_ProseWrappedJSON(t *testing.T) {
	llm := &fakeLLM{response: "Sure, here is the classification:\n" +
		`{"category": "Personal", "reasoning": "Reply in an ongoing thread"}` +
		"\nLet me know if you need anything else."}
	engine := newTestEngine(llm, nil)

	result := engine.Classify(context.Background(), &Message{Sender: "a@x.com"}, "u1")

	assert.Equal(t, CategoryPersonal, result.Category)
	assert.Equal(t, "Reply in an ongoing thread", result.Reasoning)
}

func TestBuildPrompt_ContainsTargetFields(t *testing.T) {
	engine := newTestEngine(&fakeLLM{}, nil)

	msg := &Message{
		Sender:  "Carol <carol@x.com>",
		Subject: "Budget review",
		Snippet: "Can we move the meeting",
	}
	prompt := engine.buildPrompt(msg, nil)

	assert.Contains(t, prompt, "Carol <carol@x.com>")
	assert.Contains(t, prompt, "Budget review")
	assert.Contains(t, prompt, "Can we move the meeting")
	assert.True(t, strings.Contains(prompt, noHistoryMarker))
}
