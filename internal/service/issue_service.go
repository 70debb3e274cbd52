package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/domain"
	"github.com/spec-kit/society-waste-service/internal/events"
	"github.com/spec-kit/society-waste-service/internal/observability"
	"github.com/spec-kit/society-waste-service/internal/repository"
	"github.com/spec-kit/society-waste-service/internal/security"
	"github.com/spec-kit/society-waste-service/internal/storage"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

// IssueService coordinates issue reporting and triage.
type IssueService struct {
	issues     repository.IssueRepository
	accounts   repository.AccountRepository
	history    repository.IssueHistoryRepository
	assets     storage.AssetStore
	sanitizer  security.TextSanitizer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	AccountRepo repository.AccountRepository
	HistoryRepo repository.IssueHistoryRepository
	Assets      storage.AssetStore
	Sanitizer   security.TextSanitizer
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// SubmitIssueInput describes an issue report. Image is optional.
type SubmitIssueInput struct {
	Description string
	Location    string
	Address     string
	Image       *storage.Upload
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		accounts:   deps.AccountRepo,
		history:    deps.HistoryRepo,
		assets:     deps.Assets,
		sanitizer:  sanitizer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// SubmitIssue records a new pending issue for ownerID. An attached image is stored first;
// if that fails no issue is written.
func (s *IssueService) SubmitIssue(ctx context.Context, ownerID string, input SubmitIssueInput) (*domain.Issue, error) {
	issue := &domain.Issue{
		OwnerID:     ownerID,
		Description: s.sanitizer.Sanitize(input.Description),
		Location:    s.sanitizer.Sanitize(input.Location),
		Address:     s.sanitizer.Sanitize(input.Address),
		Status:      domain.IssueStatusPending,
	}

	missing := missingFields(map[string]string{
		"description": issue.Description,
		"location":    issue.Location,
		"address":     issue.Address,
	})
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("description, location and address are required", map[string]any{"fields": missing})
	}
	if input.Image != nil && !strings.HasPrefix(strings.ToLower(input.Image.ContentType), "image/") {
		return nil, apperrors.NewValidationError("only image uploads are allowed", map[string]any{"content_type": input.Image.ContentType})
	}

	if _, err := s.accounts.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewOwnerNotFound(ownerID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if input.Image != nil {
		if s.assets == nil {
			return nil, apperrors.NewInternalError(errors.New("asset storage not configured"))
		}
		ref, err := s.assets.Save(ctx, *input.Image)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		issue.ImageURL = &ref
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		s.discardAsset(ctx, issue.ImageURL)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewOwnerNotFound(ownerID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordIssueCreated()
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   events.AccountActor(ownerID),
		Payload: events.IssueCreatedPayload{
			OwnerID:     ownerID,
			Location:    issue.Location,
			HasImage:    issue.ImageURL != nil,
			Description: stringPreview(issue.Description, 120),
		},
	})
	return issue, nil
}

// ListIssuesForOwner returns the owner's issues, newest first. An unknown owner has no issues.
func (s *IssueService) ListIssuesForOwner(ctx context.Context, ownerID string) ([]domain.Issue, error) {
	issues, err := s.issues.ListByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Issue{}, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// ListAllIssues returns every issue, newest first, with its reporter's contact details.
func (s *IssueService) ListAllIssues(ctx context.Context) ([]domain.IssueWithReporter, error) {
	issues, err := s.issues.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	reporters := make(map[string]domain.Reporter)
	out := make([]domain.IssueWithReporter, 0, len(issues))
	for _, issue := range issues {
		reporter, ok := reporters[issue.OwnerID]
		if !ok {
			account, err := s.accounts.GetByID(ctx, issue.OwnerID)
			switch {
			case err == nil:
				reporter = domain.Reporter{
					Name:          account.Name,
					ContactNumber: account.ContactNumber,
					Email:         account.Email,
				}
			case errors.Is(err, repository.ErrNotFound):
				s.logger.Warn("issue owner missing", zap.String("issue_id", issue.ID), zap.String("owner_id", issue.OwnerID))
			default:
				return nil, apperrors.NewInternalError(err)
			}
			reporters[issue.OwnerID] = reporter
		}
		out = append(out, domain.IssueWithReporter{Issue: issue, Reporter: reporter})
	}
	return out, nil
}

// SetStatus overwrites the status of an issue. Any status may follow any other; concurrent
// updates are not serialized and the last write wins.
func (s *IssueService) SetStatus(ctx context.Context, issueID, status, adminID string) (*domain.Issue, error) {
	newStatus := domain.IssueStatus(status)
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidStatus(status)
	}

	current, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, issueLookupError(err, issueID)
	}
	oldStatus := current.Status

	updated, err := s.issues.UpdateStatus(ctx, issueID, newStatus)
	if err != nil {
		return nil, issueLookupError(err, issueID)
	}

	s.recordStatusChange(ctx, issueID, adminID, oldStatus, newStatus)
	s.metrics.RecordStatusChange(string(newStatus))

	actor := events.Actor{Type: domain.SubjectTypeAdmin}
	if adminID != "" {
		actor = events.AdminActor(adminID)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: updated.ID,
		Actor:   actor,
		Payload: events.IssueStatusChangedPayload{
			OwnerID:   updated.OwnerID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return updated, nil
}

// StatusHistory lists the recorded status changes of an issue, oldest first.
func (s *IssueService) StatusHistory(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, issueLookupError(err, issueID)
	}
	if s.history == nil {
		return []domain.IssueStatusChange{}, nil
	}
	changes, err := s.history.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if changes == nil {
		changes = []domain.IssueStatusChange{}
	}
	return changes, nil
}

func (s *IssueService) recordStatusChange(ctx context.Context, issueID, adminID string, oldStatus, newStatus domain.IssueStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.IssueStatusChange{
		IssueID:   issueID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	if adminID != "" {
		entry.AdminID = &adminID
	}
	// The status write already happened; a lost audit row is logged rather than surfaced.
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record status change", zap.String("issue_id", issueID), zap.Error(err))
	}
}

func (s *IssueService) discardAsset(ctx context.Context, ref *string) {
	if ref == nil || s.assets == nil {
		return
	}
	if err := s.assets.Delete(context.WithoutCancel(ctx), *ref); err != nil {
		s.logger.Warn("orphaned issue image", zap.String("ref", *ref), zap.Error(err))
	}
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func issueLookupError(err error, issueID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
	}
	return apperrors.NewInternalError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max-3]) + "..."
}
