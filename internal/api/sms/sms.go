// Package sms delivers text messages for MFA.
package sms

import (
	"context"
	"log/slog"
	"sync"
)

type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type Message struct {
	To   string
	Body string
}

// LogSender logs messages instead of sending them and remembers them, for
// development and tests.
type LogSender struct {
	Logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func (s *LogSender) Send(ctx context.Context, to, body string) error {
	s.mu.Lock()
	s.sent = append(s.sent, Message{To: to, Body: body})
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "sms not delivered (log sender)", "to", to, "body", body)
	}
	return nil
}

func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// Last returns the most recent message, if any.
func (s *LogSender) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}
