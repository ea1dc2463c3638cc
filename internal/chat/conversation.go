// Package chat holds the per-event conversation handle the flows work through
// and the texts shared by more than one flow.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/mercato/internal/logging"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/aretw0/mercato/pkg/ports"
)

// Conversation is one customer's session together with the channel to answer on.
// It lives for the duration of a single inbound event.
type Conversation struct {
	Session *domain.Session

	out     ports.Messenger
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithLogger sets the logger. Every entry carries the customer's phone.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) {
		c.logger = l
	}
}

// WithMetrics sets the collectors used to count collaborator failures.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Conversation) {
		c.metrics = m
	}
}

// New opens a conversation over sess.
func New(sess *domain.Session, out ports.Messenger, opts ...Option) *Conversation {
	c := &Conversation{
		Session: sess,
		out:     out,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("phone", sess.ID)
	return c
}

// Phone returns the customer identifier.
func (c *Conversation) Phone() string {
	return c.Session.ID
}

// Logger returns a logger scoped to the customer.
func (c *Conversation) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the collectors, possibly nil.
func (c *Conversation) Metrics() *observability.Metrics {
	return c.metrics
}

// Say sends a text message. A failed send is logged and counted, never returned.
func (c *Conversation) Say(ctx context.Context, body string) {
	if err := c.out.SendText(ctx, c.Session.ID, body); err != nil {
		c.logger.Warn("failed to send text", "err", err)
		c.metrics.CollaboratorFailure("messenger", "send_text")
	}
}

// Sayf formats and sends a text message.
func (c *Conversation) Sayf(ctx context.Context, format string, args ...any) {
	c.Say(ctx, fmt.Sprintf(format, args...))
}

// Show sends an image with a caption. It reports whether the send went through
// so callers can fall back to text.
func (c *Conversation) Show(ctx context.Context, imageURL, caption string) bool {
	if err := c.out.SendImage(ctx, c.Session.ID, imageURL, caption); err != nil {
		c.logger.Warn("failed to send image", "err", err)
		c.metrics.CollaboratorFailure("messenger", "send_image")
		return false
	}
	return true
}

// Failed records a collaborator failure. The caller still owes the customer a reply.
func (c *Conversation) Failed(collaborator, op string, err error) {
	c.logger.Error("collaborator call failed", "collaborator", collaborator, "op", op, "step", c.Session.Step(), "err", err)
	c.metrics.CollaboratorFailure(collaborator, op)
}

// Home resets the session and sends the welcome menu.
func (c *Conversation) Home(ctx context.Context) {
	c.Session.Reset()
	c.Say(ctx, WelcomeMenu())
}
