package models

import "time"

// IntentionStatus is the decision state of a membership intention.
type IntentionStatus string

const (
	IntentionPending  IntentionStatus = "pending"
	IntentionApproved IntentionStatus = "approved"
	IntentionRejected IntentionStatus = "rejected"
)

var intentionTransitions = map[IntentionStatus]map[IntentionStatus]struct{}{
	IntentionPending: {
		IntentionApproved: {},
		IntentionRejected: {},
	},
	IntentionApproved: {},
	IntentionRejected: {},
}

// Valid reports whether s is a known status.
func (s IntentionStatus) Valid() bool {
	_, ok := intentionTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s IntentionStatus) CanTransitionTo(next IntentionStatus) bool {
	allowed, ok := intentionTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s IntentionStatus) Terminal() bool {
	return s.Valid() && len(intentionTransitions[s]) == 0
}

// MembershipIntention is an application to join a group. Token is only set
// once the intention has been approved.
type MembershipIntention struct {
	BaseModel

	FullName string  `gorm:"size:255;not null" json:"full_name"`
	Email    string  `gorm:"size:320;not null;index" json:"email"`
	Phone    *string `gorm:"size:32" json:"phone,omitempty"`
	Company  *string `gorm:"size:255" json:"company,omitempty"`
	Position *string `gorm:"size:255" json:"position,omitempty"`
	GroupID  uint    `gorm:"not null;index" json:"group_id"`

	Status    IntentionStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	Token     *string         `gorm:"size:128;uniqueIndex" json:"token,omitempty"`
	DecidedAt *time.Time      `json:"decided_at,omitempty"`
}
