package notify

import (
	"fmt"
	"log/slog"

	"github.com/dimitrije/workspace-invites/internal/config"
)

// NewSender picks the provider named by cfg.Provider.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		s := NewSMTPSender(cfg.SMTP)
		if !s.IsConfigured() {
			return nil, fmt.Errorf("invalid SMTP configuration")
		}
		return s, nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGrid)
	case "mailgun":
		return NewMailgunSender(cfg.Mailgun)
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
