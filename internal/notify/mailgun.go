package notify

import (
	"context"
	"fmt"

	"github.com/dimitrije/workspace-invites/internal/config"
	"github.com/mailgun/mailgun-go/v4"
)

type MailgunSender struct {
	cfg config.MailgunConfig
	mg  *mailgun.MailgunImpl
}

func NewMailgunSender(cfg config.MailgunConfig) (*MailgunSender, error) {
	if cfg.APIKey == "" || cfg.Domain == "" || cfg.From == "" {
		return nil, fmt.Errorf("invalid Mailgun configuration")
	}
	return &MailgunSender{cfg: cfg, mg: mailgun.NewMailgun(cfg.Domain, cfg.APIKey)}, nil
}

func (s *MailgunSender) SendInvitation(ctx context.Context, msg Invitation) error {
	text, html, err := Render(msg)
	if err != nil {
		return err
	}

	message := s.mg.NewMessage(s.cfg.From, Subject(msg), text)
	message.SetHtml(html)
	if err := message.AddRecipient(msg.To); err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}

	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}
	return nil
}
