package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"farmlink_backend/platform/config"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcome(ctx context.Context, toEmail, displayName string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome to FarmLink",
			Heading: "Welcome to FarmLink",
		},
		DisplayName: displayName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendRequestAccepted(ctx context.Context, toEmail, requestTitle, providerName string) error {
	content, err := renderEmailTemplate("request_accepted.html", requestAcceptedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Your labor request was accepted",
			Heading: "Your labor request was accepted",
		},
		RequestTitle: requestTitle,
		ProviderName: providerName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectRequestAccepted, content)
}

func (s *SMTPSender) SendAssignmentReminder(ctx context.Context, toEmail, requestTitle, workDate, window string) error {
	content, err := renderEmailTemplate("assignment_reminder.html", assignmentReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Work day reminder",
			Heading: "Work day reminder",
		},
		RequestTitle: requestTitle,
		WorkDate:     workDate,
		Window:       window,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAssignmentReminder, content)
}
