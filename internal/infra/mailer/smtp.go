// Package mailer sends outbound mail for the worker process.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"vanguard/config"

	"github.com/pkg/errors"
)

// Mailer sends a single mail message.
type Mailer interface {
	Send(to, subject, body string) error
}

// smtpMailer implements Mailer over plain SMTP with optional AUTH.
type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config) (Mailer, error) {
	if cfg.SMTP == nil || cfg.SMTP.Host == "" {
		return nil, errors.New("smtp config must be provided")
	}

	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}

	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTP.Host, cfg.SMTP.Port),
		auth: auth,
		from: cfg.SMTP.From,
	}, nil
}

// Send delivers a plain-text message to a single recipient.
func (m *smtpMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return errors.Wrap(err, "send mail")
	}

	return nil
}
