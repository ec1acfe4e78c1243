package notify

import (
	"context"
	"log/slog"
)

// LogSender writes the invitation to the log instead of emailing it.
// Used in development and when no provider is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendInvitation(ctx context.Context, msg Invitation) error {
	s.logger.InfoContext(ctx, "invitation email",
		"to", msg.To,
		"workspace", msg.WorkspaceName,
		"inviter", msg.InviterName,
		"accept_url", msg.AcceptURL,
	)
	return nil
}
