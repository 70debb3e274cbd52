package events

import (
	"time"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueStatusChanged EventType = "issue_status_changed"
)

// Actor identifies who caused an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	AccountID *string            `json:"account_id,omitempty"`
	AdminID   *string            `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issue_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	OwnerID     string `json:"owner_id"`
	Location    string `json:"location"`
	HasImage    bool   `json:"has_image"`
	Description string `json:"description_preview"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OwnerID   string             `json:"owner_id"`
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// AccountActor builds the actor for a society user.
func AccountActor(accountID string) Actor {
	return Actor{Type: domain.SubjectTypeUser, AccountID: &accountID}
}

// AdminActor builds the actor for an administrator.
func AdminActor(adminID string) Actor {
	return Actor{Type: domain.SubjectTypeAdmin, AdminID: &adminID}
}
