package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminAccount) error {
	const query = `
        INSERT INTO admins (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
	).Scan(&admin.ID, &admin.CreatedAt)
	return mapPgError(err)
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	const query = `
        SELECT id, name, email, password_hash, created_at
        FROM admins WHERE id=$1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	const query = `
        SELECT id, name, email, password_hash, created_at
        FROM admins WHERE email=$1`
	return scanAdmin(r.pool.QueryRow(ctx, query, email))
}

func scanAdmin(row pgx.Row) (*domain.AdminAccount, error) {
	var admin domain.AdminAccount
	if err := row.Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &admin, nil
}
