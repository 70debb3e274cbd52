package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusPending   IssueStatus = "pending"
	IssueStatusInProcess IssueStatus = "in process"
	IssueStatusResolved  IssueStatus = "resolved"
)

// IssueStatuses lists every accepted status value.
var IssueStatuses = []IssueStatus{IssueStatusPending, IssueStatusInProcess, IssueStatusResolved}

// Valid reports whether s is one of the defined statuses.
func (s IssueStatus) Valid() bool {
	for _, candidate := range IssueStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Issue is a waste-management problem reported by a society.
type Issue struct {
	ID          string
	OwnerID     string
	Description string
	Location    string
	Address     string
	ImageURL    *string
	Status      IssueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reporter is the denormalized owner view shown to administrators.
type Reporter struct {
	Name          string
	ContactNumber string
	Email         string
}

// IssueWithReporter pairs an issue with its owner's contact details.
type IssueWithReporter struct {
	Issue
	Reporter Reporter
}

// IssueStatusChange is an immutable audit entry written on every status update.
type IssueStatusChange struct {
	ID        string
	IssueID   string
	AdminID   *string
	OldStatus IssueStatus
	NewStatus IssueStatus
	CreatedAt time.Time
}
