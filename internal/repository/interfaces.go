package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an email is already taken within a namespace.
	ErrDuplicateEmail = errors.New("email already exists")
)

// AccountRepository persists society accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// AdminRepository persists administrator accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminAccount) error
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	// UpdateStatus overwrites the status unconditionally and returns the stored issue.
	UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Issue, error)
	ListAll(ctx context.Context) ([]domain.Issue, error)
}

// IssueHistoryRepository stores status change audit entries.
type IssueHistoryRepository interface {
	Create(ctx context.Context, change *domain.IssueStatusChange) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Accounts AccountRepository
	Admins   AdminRepository
	Issues   IssueRepository
	History  IssueHistoryRepository
}
