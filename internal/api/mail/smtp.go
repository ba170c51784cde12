package mail

import (
	"context"
	"crypto/tls"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// SkipVerify disables certificate checks, for local relays only.
	SkipVerify bool
}

type SMTPSender struct {
	*gomail.Dialer
	From string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipVerify, //nolint:gosec // opt-in for dev relays
	}
	return &SMTPSender{Dialer: dialer, From: cfg.From}
}

// Send delivers message over a fresh SMTP connection. gomail has no
// context support, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, message *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", message.To...)
	msg.SetHeader("Subject", message.Subject)
	if message.IsHTML {
		msg.SetBody("text/html", message.Body)
	} else {
		msg.SetBody("text/plain", message.Body)
	}
	return s.DialAndSend(msg)
}
