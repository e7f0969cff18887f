// Package mail provides mail-provider adapters for the triage core.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const unreadQuery = "is:unread in:inbox"

// GmailClient is a Gmail implementation of the MailClient interface. It
// expects an already-acquired OAuth access token; token acquisition and
// refresh are the caller's concern.
type GmailClient struct {
	svc    *gmail.Service
	logger *zap.Logger
}

// NewGmailClient creates a new Gmail client from an OAuth access token
func NewGmailClient(ctx context.Context, accessToken string, logger *zap.Logger) (*GmailClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("gmail access token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailClient{
		svc:    svc,
		logger: logger,
	}, nil
}

// FetchUnread returns up to limit unread inbox messages. Messages whose
// metadata cannot be fetched are skipped rather than failing the batch.
func (c *GmailClient) FetchUnread(ctx context.Context, limit int64) ([]core.Message, error) {
	call := c.svc.Users.Messages.List("me").Q(unreadQuery)
	if limit > 0 {
		call = call.MaxResults(limit)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %w", err)
	}

	msgs := make([]core.Message, 0, len(res.Messages))
	for _, ref := range res.Messages {
		full, err := c.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Message-ID").
			Context(ctx).Do()
		if err != nil {
			c.logger.Warn("Failed to fetch message metadata, skipping",
				zap.String("message_id", ref.Id),
				zap.Error(err))
			continue
		}

		msgs = append(msgs, core.Message{
			ID:        full.Id,
			ThreadID:  full.ThreadId,
			MessageID: headerValue(full, "Message-ID"),
			Sender:    headerValue(full, "From"),
			Subject:   headerValue(full, "Subject"),
			Snippet:   full.Snippet,
			Date:      time.UnixMilli(full.InternalDate),
		})
	}

	c.logger.Debug("Fetched unread messages", zap.Int("count", len(msgs)))

	return msgs, nil
}

// SendReply sends a reply in the message's thread via the Gmail API
func (c *GmailClient) SendReply(ctx context.Context, msg *core.Message, body string) error {
	from, err := c.GetUserProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve sending address: %w", err)
	}

	raw := base64.URLEncoding.EncodeToString([]byte(buildReplyRaw(from, msg, body)))

	_, err = c.svc.Users.Messages.Send("me", &gmail.Message{
		Raw:      raw,
		ThreadId: msg.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// MarkRead removes the UNREAD label from the given messages
func (c *GmailClient) MarkRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := c.svc.Users.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// Archive removes the INBOX label from the given messages
func (c *GmailClient) Archive(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := c.svc.Users.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to archive messages: %w", err)
	}
	return nil
}

// GetUserProfile returns the authenticated account's email address
func (c *GmailClient) GetUserProfile(ctx context.Context) (string, error) {
	profile, err := c.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch user profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// headerValue extracts a header value from a Gmail message payload
func headerValue(m *gmail.Message, header string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == header {
			return h.Value
		}
	}
	return ""
}

// buildReplyRaw renders an RFC 822 reply to msg with threading headers
func buildReplyRaw(from string, msg *core.Message, body string) string {
	subject := msg.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Sender)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	if msg.MessageID != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", msg.MessageID)
		fmt.Fprintf(&b, "References: %s\r\n", msg.MessageID)
	}
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return b.String()
}
