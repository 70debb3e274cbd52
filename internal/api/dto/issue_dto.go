package dto

import (
	"time"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// UpdateIssueStatusRequest payload for PUT /issues/:issueId.
type UpdateIssueStatusRequest struct {
	Status string `json:"status"`
}

// IssueResponse is the JSON form of an issue.
type IssueResponse struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"ownerId"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	Address     string             `json:"address"`
	ImageURL    *string            `json:"imageUrl"`
	Status      domain.IssueStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// ReporterResponse is the owner contact shown to administrators.
type ReporterResponse struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

// AdminIssueResponse is an issue annotated with its reporter.
type AdminIssueResponse struct {
	IssueResponse
	Reporter ReporterResponse `json:"reporter"`
}

// IssueStatusChangeResponse is one audit entry.
type IssueStatusChangeResponse struct {
	ID        string             `json:"id"`
	IssueID   string             `json:"issueId"`
	AdminID   *string            `json:"adminId"`
	OldStatus domain.IssueStatus `json:"oldStatus"`
	NewStatus domain.IssueStatus `json:"newStatus"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NewIssueResponse projects an issue.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		OwnerID:     issue.OwnerID,
		Description: issue.Description,
		Location:    issue.Location,
		Address:     issue.Address,
		ImageURL:    issue.ImageURL,
		Status:      issue.Status,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

// NewIssueList projects a list of issues.
func NewIssueList(issues []domain.Issue) []IssueResponse {
	items := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, NewIssueResponse(&issues[i]))
	}
	return items
}

// NewAdminIssueList projects issues together with their reporters.
func NewAdminIssueList(issues []domain.IssueWithReporter) []AdminIssueResponse {
	items := make([]AdminIssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, AdminIssueResponse{
			IssueResponse: NewIssueResponse(&issues[i].Issue),
			Reporter: ReporterResponse{
				Name:          issues[i].Reporter.Name,
				ContactNumber: issues[i].Reporter.ContactNumber,
				Email:         issues[i].Reporter.Email,
			},
		})
	}
	return items
}

// NewStatusHistory projects audit entries.
func NewStatusHistory(changes []domain.IssueStatusChange) []IssueStatusChangeResponse {
	items := make([]IssueStatusChangeResponse, 0, len(changes))
	for _, change := range changes {
		items = append(items, IssueStatusChangeResponse{
			ID:        change.ID,
			IssueID:   change.IssueID,
			AdminID:   change.AdminID,
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
			CreatedAt: change.CreatedAt,
		})
	}
	return items
}
