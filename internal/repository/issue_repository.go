package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

const issueColumns = `id, owner_id, description, location, address, image_url, status, created_at, updated_at`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (owner_id, description, location, address, image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		issue.OwnerID,
		issue.Description,
		issue.Location,
		issue.Address,
		issue.ImageURL,
		issue.Status,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	return mapPgError(err)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return scanIssue(r.pool.QueryRow(ctx, query, id))
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error) {
	const query = `
        UPDATE issues SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + issueColumns
	return scanIssue(r.pool.QueryRow(ctx, query, status, id))
}

func (r *issueRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ListAll(ctx context.Context) ([]domain.Issue, error) {
	const query = `SELECT ` + issueColumns + ` FROM issues ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.OwnerID,
		&issue.Description,
		&issue.Location,
		&issue.Address,
		&issue.ImageURL,
		&issue.Status,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}
