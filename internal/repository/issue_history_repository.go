package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

type issueHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewIssueHistoryRepository builds repository.
func NewIssueHistoryRepository(pool *pgxpool.Pool) IssueHistoryRepository {
	return &issueHistoryRepository{pool: pool}
}

func (r *issueHistoryRepository) Create(ctx context.Context, change *domain.IssueStatusChange) error {
	const query = `
        INSERT INTO issue_status_changes (issue_id, admin_id, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		change.IssueID,
		change.AdminID,
		change.OldStatus,
		change.NewStatus,
	).Scan(&change.ID, &change.CreatedAt)
	return mapPgError(err)
}

func (r *issueHistoryRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	const query = `
        SELECT id, issue_id, admin_id, old_status, new_status, created_at
        FROM issue_status_changes WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.IssueStatusChange
	for rows.Next() {
		var change domain.IssueStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.IssueID,
			&change.AdminID,
			&change.OldStatus,
			&change.NewStatus,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}

// NewPostgresStore wires every Postgres repository onto one pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Accounts: NewAccountRepository(pool),
		Admins:   NewAdminRepository(pool),
		Issues:   NewIssueRepository(pool),
		History:  NewIssueHistoryRepository(pool),
	}
}
