package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// SMTPSender submits replies through an SMTP relay instead of the mail
// provider's API. Fetching still happens through the provider client; only
// the outbound path changes.
type SMTPSender struct {
	addr     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

// NewSMTPSender creates a new SMTP reply sender
func NewSMTPSender(addr, username, password, from string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// SendReply sends a reply to the message's sender over SMTP
func (s *SMTPSender) SendReply(ctx context.Context, msg *core.Message, body string) error {
	to := core.NormalizeSender(msg.Sender)
	if to == "" {
		return fmt.Errorf("message has no sender address")
	}

	raw := buildReplyRaw(s.from, msg, body)

	var auth sasl.Client
	if s.username != "" {
		auth = sasl.NewPlainClient("", s.username, s.password)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, strings.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to send reply via SMTP: %w", err)
	}

	s.logger.Debug("Sent reply via SMTP",
		zap.String("to", to),
		zap.String("relay", s.addr))

	return nil
}

// smtpReplyClient fetches through the provider client but submits replies
// over SMTP
type smtpReplyClient struct {
	core.MailClient
	sender *SMTPSender
}

// WithSMTPReply wraps a MailClient so replies go through the SMTP sender
func WithSMTPReply(base core.MailClient, sender *SMTPSender) core.MailClient {
	return &smtpReplyClient{
		MailClient: base,
		sender:     sender,
	}
}

func (c *smtpReplyClient) SendReply(ctx context.Context, msg *core.Message, body string) error {
	return c.sender.SendReply(ctx, msg, body)
}
