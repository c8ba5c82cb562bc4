// Package mail renders notification emails and delivers them over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jhillyerd/enmime"
)

// Message is a rendered email addressed to one person.
type Message struct {
	ToName  string
	ToAddr  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer composes MIME messages with enmime and hands them to an enmime.Sender.
type SMTPMailer struct {
	fromName string
	fromAddr string
	sender   enmime.Sender
}

// SMTPConfig holds what NewSMTPMailer needs.
type SMTPConfig struct {
	Addr     string
	User     string
	Password string
	Host     string
	From     string
}

// NewSMTPMailer builds a mailer that talks to cfg.Addr. PLAIN auth is used
// only when a user is configured.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return NewMailer(cfg.From, enmime.NewSMTP(cfg.Addr, auth))
}

// NewMailer builds a mailer over any enmime.Sender. from is an RFC 5322 address, e.g. "FastFeet <noreply@fastfeet.com>".
func NewMailer(from string, sender enmime.Sender) (*SMTPMailer, error) {
	addrs, err := enmime.ParseAddressList(from)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("mail: invalid from address %q: %v", from, err)
	}
	return &SMTPMailer{fromName: addrs[0].Name, fromAddr: addrs[0].Address, sender: sender}, nil
}

// Send builds and sends m.
func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := enmime.Builder().
		From(s.fromName, s.fromAddr).
		To(m.ToName, m.ToAddr).
		Subject(m.Subject).
		Text([]byte(m.Text))
	if m.HTML != "" {
		b = b.HTML([]byte(m.HTML))
	}
	if err := b.Send(s.sender); err != nil {
		return fmt.Errorf("mail: send to %s: %w", m.ToAddr, err)
	}
	return nil
}
