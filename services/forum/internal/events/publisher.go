// Package events publishes forum lifecycle events to NATS JetStream.
// Publishing is fire-and-forget: failures are logged and never reach callers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectCommentCreated = "forum.comments.created"
	SubjectCommentEdited  = "forum.comments.edited"
	SubjectCommentDeleted = "forum.comments.deleted"
	SubjectCommentReacted = "forum.comments.reacted"
	SubjectPostCreated    = "forum.posts.created"
	SubjectPostDeleted    = "forum.posts.deleted"

	StreamName = "FORUM"
)

// Event is the envelope sent to every forum.* subject.
type Event struct {
	EventID    string         `json:"event_id"`
	Subject    string         `json:"subject"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes forum events. The zero value and a nil pointer are no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New wraps an existing JetStream context. Pass js=nil for a no-op publisher.
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, log: log}
}

// EnsureStream creates the FORUM stream if it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(StreamName); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"forum.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

// Publish sends an event asynchronously. Safe on a nil receiver.
func (p *Publisher) Publish(subject, userID string, props map[string]any) {
	if p == nil || p.js == nil {
		return
	}
	data, err := Encode(subject, userID, props)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// Encode builds the wire form of an event.
func Encode(subject, userID string, props map[string]any) ([]byte, error) {
	return json.Marshal(Event{
		EventID:    uuid.NewString(),
		Subject:    subject,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	})
}
