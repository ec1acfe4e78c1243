// Package notify delivers invitation emails. Delivery is best-effort: the
// Dispatcher sends in the background and only logs failures.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Invitation is everything an invitation email needs.
type Invitation struct {
	To            string
	WorkspaceName string
	InviterName   string
	AcceptURL     string
}

type Sender interface {
	SendInvitation(ctx context.Context, msg Invitation) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Invitation) error

func (f SenderFunc) SendInvitation(ctx context.Context, msg Invitation) error {
	return f(ctx, msg)
}

var htmlBody = htmltemplate.Must(htmltemplate.New("invitation.html").Parse(`<html>
<body>
	<h2>Workspace Invitation</h2>
	<p>Hi,</p>
	<p><strong>{{.InviterName}}</strong> has invited you to join the workspace <strong>{{.WorkspaceName}}</strong>.</p>
	<p><a href="{{.AcceptURL}}">Click here to view and respond to this invitation</a></p>
	<p>This invitation expires in 7 days.</p>
</body>
</html>`))

var textBody = template.Must(template.New("invitation.txt").Parse(`{{.InviterName}} has invited you to join the workspace {{.WorkspaceName}}.

View and respond to this invitation:
{{.AcceptURL}}
`))

func Subject(msg Invitation) string {
	return fmt.Sprintf("You've been invited to join %s", msg.WorkspaceName)
}

// Render returns the plain-text and HTML bodies for msg. Names are
// HTML-escaped in the HTML part.
func Render(msg Invitation) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := textBody.Execute(&tb, msg); err != nil {
		return "", "", fmt.Errorf("failed to render text body: %w", err)
	}
	if err := htmlBody.Execute(&hb, msg); err != nil {
		return "", "", fmt.Errorf("failed to render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}
