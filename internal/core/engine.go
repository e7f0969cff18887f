package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/inbox-triage/internal/utils"
	"go.uber.org/zap"
)

const (
	// ReasoningServiceError is surfaced when the AI service could not be
	// reached at all, as opposed to responding with something unusable
	ReasoningServiceError = "Error connecting to AI service"

	// ReasoningParseFailure is surfaced when the model responded but its
	// output could not be parsed into a classification
	ReasoningParseFailure = "The AI response could not be interpreted"
)

const promptFormat = `You are an email triage assistant. Classify the following email as "Personal" or "NotPersonal".

Category definitions:
- Personal: direct correspondence from a human, urgent or actionable items, ongoing work threads.
- NotPersonal: bulk mail, automated notifications, marketing, newsletters, transactional receipts.

The user has previously corrected classifications for this sender:
%s

Respond with a JSON object containing:
- category: either "Personal" or "NotPersonal"
- reasoning: string (brief explanation of the classification)

Email:
From: %s
Subject: %s
Snippet:
%s

Respond only with the JSON object and nothing else.`

const noHistoryMarker = "(no prior corrections for this sender)"

// classificationResponse is the structured response expected from the LLM
type classificationResponse struct {
	Category  string `json:"category"`
	Reasoning string `json:"reasoning"`
}

// Engine performs retrieval-augmented classification of messages. All
// failure paths resolve to a result value; Classify never returns an error.
type Engine struct {
	llm            LLMClient
	feedback       FeedbackSource
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	retrievalLimit int
	maxSnippetSize int
}

// NewEngine creates a new classification engine
func NewEngine(
	llm LLMClient,
	feedback FeedbackSource,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	retrievalLimit int,
	maxSnippetSize int,
) *Engine {
	if retrievalLimit <= 0 {
		retrievalLimit = DefaultRetrievalLimit
	}
	return &Engine{
		llm:            llm,
		feedback:       feedback,
		logger:         logger,
		textProcessor:  textProcessor,
		retrievalLimit: retrievalLimit,
		maxSnippetSize: maxSnippetSize,
	}
}

// Classify determines whether a message is personal, using the user's
// correction history for the message's sender as precedent.
//
// Failure policy: a transport or API failure yields CategoryUnclassified so
// the caller can distinguish a service outage from a verdict. A response
// that arrives but cannot be parsed yields CategoryNotPersonal instead.
func (e *Engine) Classify(ctx context.Context, msg *Message, userID string) ClassificationResult {
	log := e.feedback.Load(ctx, userID)
	precedents := RelevantFeedback(msg, log, e.retrievalLimit)

	var used *FeedbackEntry
	if len(precedents) > 0 {
		used = &precedents[0]
	}

	prompt := e.buildPrompt(msg, precedents)

	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("AI service call failed",
			zap.String("message_id", msg.ID),
			zap.String("sender", msg.Sender),
			zap.Error(err))
		return ClassificationResult{
			Category:  CategoryUnclassified,
			Reasoning: ReasoningServiceError,
		}
	}

	resp, err := parseClassification(raw)
	if err != nil || !Category(resp.Category).IsValid() || resp.Reasoning == "" {
		e.logger.Warn("Unusable AI response, applying safe default",
			zap.String("message_id", msg.ID),
			zap.String("raw_response", raw),
			zap.Error(err))
		return ClassificationResult{
			Category:    CategoryNotPersonal,
			Reasoning:   ReasoningParseFailure,
			UsedContext: used,
		}
	}

	return ClassificationResult{
		Category:    Category(resp.Category),
		Reasoning:   resp.Reasoning,
		UsedContext: used,
	}
}

// buildPrompt renders the classification prompt, embedding the retrieved
// precedent list as "subject / snippet -> classification" lines
func (e *Engine) buildPrompt(msg *Message, precedents []FeedbackEntry) string {
	history := noHistoryMarker
	if len(precedents) > 0 {
		var b strings.Builder
		for _, entry := range precedents {
			snippet := entry.Snippet
			if e.textProcessor != nil {
				snippet = e.textProcessor.ProcessText(snippet, e.maxSnippetSize)
			}
			fmt.Fprintf(&b, "- %q / %q -> %s\n", entry.Subject, snippet, entry.UserClassification)
		}
		history = strings.TrimRight(b.String(), "\n")
	}

	snippet := msg.Snippet
	if e.textProcessor != nil {
		snippet = e.textProcessor.ProcessText(snippet, e.maxSnippetSize)
	}

	return fmt.Sprintf(promptFormat, history, msg.Sender, msg.Subject, snippet)
}

// parseClassification parses the model's raw text into the expected schema.
// When the whole response is not valid JSON it falls back to extracting the
// outermost brace-delimited region, since models occasionally wrap the JSON
// in prose despite instructions.
func parseClassification(text string) (*classificationResponse, error) {
	var resp classificationResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		jsonStart := strings.Index(text, "{")
		jsonEnd := strings.LastIndex(text, "}")
		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}
	return &resp, nil
}
