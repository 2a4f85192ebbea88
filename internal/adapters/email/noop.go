package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// noopKeep is how many messages a NoopSender remembers.
const noopKeep = 50

// NoopSender logs messages instead of delivering them and keeps the most
// recent ones in memory for development and tests.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs msg and remembers it.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	if len(s.sent) > noopKeep {
		s.sent = s.sent[len(s.sent)-noopKeep:]
	}
	s.mu.Unlock()
	return Receipt{MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()), SentAt: time.Now()}, nil
}

// Sent returns a copy of the remembered messages, oldest first.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
