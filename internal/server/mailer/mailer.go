// Package mailer delivers account emails: verification links and password
// reset links.
package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/chouaib-skitou/Festivio/internal/logging"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPConfig holds the dialer settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends HTML mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	send   func(m ...*gomail.Message) error
	logger logging.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger logging.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTPMailer{
		from:   cfg.From,
		send:   d.DialAndSend,
		logger: logger.With("module", "mailer"),
	}
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, link string) error {
	body := `<h1>Welcome to Festivio!</h1>
<p>Please verify your email address by clicking the link below:</p>
<p><a href="` + html.EscapeString(link) + `">Verify email</a></p>`
	return m.deliver(ctx, to, "Verify your email", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body := `<h1>Password reset</h1>
<p>You requested a password reset. Click the link below to choose a new password:</p>
<p><a href="` + html.EscapeString(link) + `">Reset password</a></p>
<p>The link expires in one hour. If you did not ask for this, ignore this email.</p>`
	return m.deliver(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		m.logger.Error(ctx, "could not send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Info(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

// LogMailer logs instead of sending mail. It is used in development when no
// SMTP host is configured. Links carry live tokens and are only written at
// Debug level.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) SendVerification(ctx context.Context, to, link string) error {
	m.logger.Info(ctx, "verification mail skipped", "to", to)
	m.logger.Debug(ctx, "verification link", "to", to, "link", link)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.Info(ctx, "password reset mail skipped", "to", to)
	m.logger.Debug(ctx, "password reset link", "to", to, "link", link)
	return nil
}
