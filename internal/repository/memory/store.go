// Package memory provides process-local repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/society-waste-service/internal/domain"
	"github.com/spec-kit/society-waste-service/internal/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Accounts: NewAccountRepository(),
		Admins:   NewAdminRepository(),
		Issues:   NewIssueRepository(),
		History:  NewIssueHistoryRepository(),
	}
}

// AccountRepository keeps accounts keyed by id with an email index.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string
	order   []string
}

// NewAccountRepository constructs an empty repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{byID: map[string]domain.Account{}, byEmail: map[string]string{}}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[account.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now().UTC()
	r.byID[account.ID] = *account
	r.byEmail[account.Email] = account.ID
	r.order = append(r.order, account.ID)
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Account, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.byID[id])
	}
	return result, nil
}

// AdminRepository keeps administrator accounts in their own namespace.
type AdminRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.AdminAccount
	byEmail map[string]string
}

// NewAdminRepository constructs an empty repository.
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{byID: map[string]domain.AdminAccount{}, byEmail: map[string]string{}}
}

func (r *AdminRepository) Create(_ context.Context, admin *domain.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[admin.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	admin.ID = uuid.NewString()
	admin.CreatedAt = time.Now().UTC()
	r.byID[admin.ID] = *admin
	r.byEmail[admin.Email] = admin.ID
	return nil
}

func (r *AdminRepository) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &admin, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// IssueRepository keeps issues in insertion order.
type IssueRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Issue
	order []string
	now   func() time.Time
}

// NewIssueRepository constructs an empty repository.
func NewIssueRepository() *IssueRepository {
	return &IssueRepository{byID: map[string]domain.Issue{}, now: func() time.Time { return time.Now().UTC() }}
}

func (r *IssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.ID = uuid.NewString()
	issue.CreatedAt = r.now()
	issue.UpdatedAt = issue.CreatedAt
	r.byID[issue.ID] = cloneIssue(*issue)
	r.order = append(r.order, issue.ID)
	return nil
}

func (r *IssueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneIssue(issue)
	return &out, nil
}

func (r *IssueRepository) UpdateStatus(_ context.Context, id string, status domain.IssueStatus) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	issue.Status = status
	issue.UpdatedAt = r.now()
	r.byID[id] = issue
	out := cloneIssue(issue)
	return &out, nil
}

func (r *IssueRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Issue, error) {
	return r.list(func(issue domain.Issue) bool { return issue.OwnerID == ownerID }), nil
}

func (r *IssueRepository) ListAll(_ context.Context) ([]domain.Issue, error) {
	return r.list(func(domain.Issue) bool { return true }), nil
}

func (r *IssueRepository) list(keep func(domain.Issue) bool) []domain.Issue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Issue, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		issue := r.byID[r.order[i]]
		if keep(issue) {
			result = append(result, cloneIssue(issue))
		}
	}
	// newest first; insertion order breaks ties within one clock tick
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func cloneIssue(issue domain.Issue) domain.Issue {
	if issue.ImageURL != nil {
		url := *issue.ImageURL
		issue.ImageURL = &url
	}
	return issue
}

// IssueHistoryRepository keeps status changes per issue.
type IssueHistoryRepository struct {
	mu      sync.RWMutex
	byIssue map[string][]domain.IssueStatusChange
}

// NewIssueHistoryRepository constructs an empty repository.
func NewIssueHistoryRepository() *IssueHistoryRepository {
	return &IssueHistoryRepository{byIssue: map[string][]domain.IssueStatusChange{}}
}

func (r *IssueHistoryRepository) Create(_ context.Context, change *domain.IssueStatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	change.ID = uuid.NewString()
	change.CreatedAt = time.Now().UTC()
	r.byIssue[change.IssueID] = append(r.byIssue[change.IssueID], *change)
	return nil
}

func (r *IssueHistoryRepository) ListByIssue(_ context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.byIssue[issueID]
	result := make([]domain.IssueStatusChange, len(entries))
	copy(result, entries)
	return result, nil
}
