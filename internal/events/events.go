package events

import (
	"context"
	"time"

	"github.com/charlesng35/memberhub/internal/models"
)

// Event types emitted when an intention is decided.
const (
	TypeIntentionApproved = "intention.approved"
	TypeIntentionRejected = "intention.rejected"
)

// IntentionEvent describes a decision taken on a membership intention.
type IntentionEvent struct {
	Type        string                 `json:"type"`
	IntentionID uint                   `json:"intention_id"`
	GroupID     uint                   `json:"group_id"`
	Email       string                 `json:"email"`
	Status      models.IntentionStatus `json:"status"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// NewIntentionEvent builds the event for a decided intention.
func NewIntentionEvent(intention *models.MembershipIntention, at time.Time) IntentionEvent {
	eventType := TypeIntentionRejected
	if intention.Status == models.IntentionApproved {
		eventType = TypeIntentionApproved
	}
	return IntentionEvent{
		Type:        eventType,
		IntentionID: intention.ID,
		GroupID:     intention.GroupID,
		Email:       intention.Email,
		Status:      intention.Status,
		OccurredAt:  at.UTC(),
	}
}

// Publisher delivers intention events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event IntentionEvent) error
	Close() error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, IntentionEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
