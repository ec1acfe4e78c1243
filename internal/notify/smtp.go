package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/dimitrije/workspace-invites/internal/config"
)

type SMTPSender struct {
	cfg      config.SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *SMTPSender) SendInvitation(ctx context.Context, msg Invitation) error {
	if !s.IsConfigured() {
		return fmt.Errorf("smtp sender is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, html, err := Render(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, msg.To, Subject(msg), html)

	return s.sendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(body))
}
