// Package email renders and delivers transactional email over SMTP.
package email

import "context"

// Sender delivers the platform's transactional mail. All sends are
// best-effort from the caller's point of view; no business operation may fail
// on a mail error.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, displayName string) error
	SendRequestAccepted(ctx context.Context, toEmail, requestTitle, providerName string) error
	SendAssignmentReminder(ctx context.Context, toEmail, requestTitle, workDate, window string) error
}

// NoopSender satisfies Sender without delivering anything. Used when email is
// disabled by configuration.
type NoopSender struct{}

func (NoopSender) SendWelcome(context.Context, string, string) error                 { return nil }
func (NoopSender) SendRequestAccepted(context.Context, string, string, string) error { return nil }
func (NoopSender) SendAssignmentReminder(context.Context, string, string, string, string) error {
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
