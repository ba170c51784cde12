// Package mail sends transactional email.
package mail

import (
	"context"
	"log/slog"
	"sync"
)

type Message struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

type Sender interface {
	Send(ctx context.Context, message *Message) error
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no SMTP server is configured and keeps what it sent.
type LogSender struct {
	Logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func (s *LogSender) Send(ctx context.Context, message *Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, *message)
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "mail not delivered (log sender)",
			"to", message.To,
			"subject", message.Subject,
			"body", message.Body,
		)
	}
	return nil
}

// Sent returns a copy of every message sent so far.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
