// Package notify delivers operator notifications by email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wneessen/go-mail"

	"github.com/alexisbeaulieu97/megatron/internal/config"
)

// Message is one plain-text notification.
type Message struct {
	Subject string
	Body    string
	To      []string
}

// Mailer sends notifications.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured is returned by a Mailer with no SMTP host.
var ErrNotConfigured = errors.New("email is not configured")

// SMTPMailer delivers messages through an SMTP relay with STARTTLS.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	username string
	password string
}

// NewSMTPMailer builds a mailer from configuration. Credentials are read from
// the environment variables the configuration names.
func NewSMTPMailer(cfg config.EmailSettings) *SMTPMailer {
	m := &SMTPMailer{
		host: cfg.Host,
		port: cfg.Port,
		from: cfg.From,
	}
	if cfg.UsernameEnv != "" {
		m.username = os.Getenv(cfg.UsernameEnv)
	}
	if cfg.PasswordEnv != "" {
		m.password = os.Getenv(cfg.PasswordEnv)
	}
	if m.username == "" {
		m.username = m.from
	}
	return m
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.host == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}

	out, err := build(m.from, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func build(from string, msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}
