package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ManualReclassificationReasoning replaces the model's reasoning when the
// user overrides a classification
const ManualReclassificationReasoning = "Manually reclassified by user"

// TriageService coordinates classification across batches of messages and
// reconciles user corrections back into the feedback store
type TriageService struct {
	engine   *Engine
	feedback FeedbackRepository
	mail     MailClient
	logger   *zap.Logger
}

// NewTriageService creates a new triage service. The mail client may be nil
// when the service is used purely for classification (e.g. from the CLI).
func NewTriageService(
	engine *Engine,
	feedback FeedbackRepository,
	mail MailClient,
	logger *zap.Logger,
) *TriageService {
	return &TriageService{
		engine:   engine,
		feedback: feedback,
		mail:     mail,
		logger:   logger,
	}
}

// ClassifyBatch classifies each message independently with unbounded
// fan-out and joins when all complete. A failure classifying one message
// surfaces as an Unclassified result in its slot and never affects the
// rest of the batch. Input order is preserved and the input slice is not
// mutated; enriched copies are returned.
func (s *TriageService) ClassifyBatch(ctx context.Context, msgs []Message, userID string) []Message {
	out := make([]Message, len(msgs))

	var wg sync.WaitGroup
	for i := range msgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := msgs[i]
			res := s.engine.Classify(ctx, &m, userID)
			m.Category = res.Category
			m.Reasoning = res.Reasoning
			m.UsedContext = res.UsedContext
			out[i] = m
		}(i)
	}
	wg.Wait()

	s.logger.Debug("Classified batch",
		zap.Int("count", len(msgs)),
		zap.String("user_id", userID))

	return out
}

// ApplyReclassification returns a copy of the message reflecting a user
// override: category replaced, reasoning set to the manual marker, and the
// reclassification time stamped. It performs no store access so callers can
// update their view optimistically.
func ApplyReclassification(msg Message, newCategory Category) Message {
	msg.Category = newCategory
	msg.Reasoning = ManualReclassificationReasoning
	msg.ReclassifiedAt = time.Now()
	return msg
}

// RecordFeedback writes a user correction to the feedback store so later
// classifications of the same sender can use it as precedent
func (s *TriageService) RecordFeedback(ctx context.Context, msg *Message, newCategory Category, userID string) error {
	entry, err := s.feedback.Save(ctx, msg, newCategory, userID)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	s.logger.Info("Recorded user feedback",
		zap.String("user_id", userID),
		zap.String("sender", msg.Sender),
		zap.String("category", string(newCategory)),
		zap.Int64("timestamp", entry.Timestamp))

	return nil
}

// Reclassify applies a user override and records it as feedback. The
// updated message is returned even when the feedback write fails, so the
// caller's view stays consistent with the user's action. The write
// completes before returning: the next classification of any message from
// this sender sees the correction.
func (s *TriageService) Reclassify(ctx context.Context, msg Message, newCategory Category, userID string) (Message, error) {
	updated := ApplyReclassification(msg, newCategory)
	if err := s.RecordFeedback(ctx, &msg, newCategory, userID); err != nil {
		return updated, err
	}
	return updated, nil
}

// GetFeedbackLog returns the user's correction history, newest first
func (s *TriageService) GetFeedbackLog(ctx context.Context, userID string) []FeedbackEntry {
	return s.feedback.Load(ctx, userID)
}

// DeleteFeedbackEntry removes a single correction by its timestamp
func (s *TriageService) DeleteFeedbackEntry(ctx context.Context, timestamp int64, userID string) error {
	return s.feedback.Delete(ctx, timestamp, userID)
}

// FetchAndClassify fetches up to limit unread messages and classifies them
func (s *TriageService) FetchAndClassify(ctx context.Context, limit int64, userID string) ([]Message, error) {
	if s.mail == nil {
		return nil, fmt.Errorf("no mail client configured")
	}

	msgs, err := s.mail.FetchUnread(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread messages: %w", err)
	}

	return s.ClassifyBatch(ctx, msgs, userID), nil
}

// Reply sends a reply to the given message
func (s *TriageService) Reply(ctx context.Context, msg *Message, body string) error {
	if s.mail == nil {
		return fmt.Errorf("no mail client configured")
	}
	return s.mail.SendReply(ctx, msg, body)
}

// Archive removes the given messages from the inbox and marks them read
func (s *TriageService) Archive(ctx context.Context, ids []string) error {
	if s.mail == nil {
		return fmt.Errorf("no mail client configured")
	}
	if err := s.mail.Archive(ctx, ids); err != nil {
		return fmt.Errorf("failed to archive messages: %w", err)
	}
	if err := s.mail.MarkRead(ctx, ids); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// UserProfile returns the authenticated mail account's address
func (s *TriageService) UserProfile(ctx context.Context) (string, error) {
	if s.mail == nil {
		return "", fmt.Errorf("no mail client configured")
	}
	return s.mail.GetUserProfile(ctx)
}
