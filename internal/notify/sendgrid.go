package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dimitrije/workspace-invites/internal/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridSender struct {
	cfg    config.SendGridConfig
	client *sendgrid.Client
}

func NewSendGridSender(cfg config.SendGridConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" || cfg.From == "" {
		return nil, fmt.Errorf("invalid SendGrid configuration")
	}
	return &SendGridSender{cfg: cfg, client: sendgrid.NewSendClient(cfg.APIKey)}, nil
}

func (s *SendGridSender) SendInvitation(ctx context.Context, msg Invitation) error {
	text, html, err := Render(msg)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.From)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, Subject(msg), to, text, html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid: unexpected status code %d", response.StatusCode)
	}
	return nil
}
