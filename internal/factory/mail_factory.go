package factory

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-triage/internal/adapters/mail"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// MailFactory creates mail clients based on configuration
type MailFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailFactory creates a new mail factory
func NewMailFactory(cfg *config.Config, logger *zap.Logger) *MailFactory {
	return &MailFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailClient creates a mail client based on the configuration.
// Returns (nil, nil) when no provider is configured; the triage service
// then runs in classification-only mode.
func (f *MailFactory) CreateMailClient() (core.MailClient, error) {
	mailCfg := f.cfg.GetMail()

	var client core.MailClient
	switch mailCfg.Provider {
	case "":
		return nil, nil
	case "gmail":
		if mailCfg.AccessToken == "" {
			f.logger.Warn("No mail access token configured, mail operations disabled")
			return nil, nil
		}
		gmailClient, err := mail.NewGmailClient(context.Background(), mailCfg.AccessToken, f.logger)
		if err != nil {
			return nil, err
		}
		client = gmailClient
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", mailCfg.Provider)
	}

	if mailCfg.SMTP.Enabled {
		sender := mail.NewSMTPSender(
			mailCfg.SMTP.Address,
			mailCfg.SMTP.Username,
			mailCfg.SMTP.Password,
			mailCfg.SMTP.From,
			f.logger,
		)
		client = mail.WithSMTPReply(client, sender)
	}

	return client, nil
}
