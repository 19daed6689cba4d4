package service

import (
	"context"
	"log/slog"
	"sync"
)

// LogMailer writes outgoing mail to the log instead of an SMTP server. The
// last message per recipient is kept so local tooling and tests can pick up
// reset links.
type LogMailer struct {
	Logger *slog.Logger

	mu   sync.Mutex
	last map[string]string
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	l := m.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "mail_sent", "to", to, "subject", subject, "body", body)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = make(map[string]string)
	}
	m.last[to] = body
	return nil
}

func (m *LogMailer) Last(to string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.last[to]
	return body, ok
}
