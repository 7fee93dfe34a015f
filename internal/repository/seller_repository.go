package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/e-taas/session-service/internal/domain"
)

// SellerRepository defines persistence access for seller profiles.
type SellerRepository interface {
	Create(ctx context.Context, profile *domain.SellerProfile) error
	Update(ctx context.Context, profile *domain.SellerProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.SellerProfile, error)
}

type sellerRepository struct {
	pool *pgxpool.Pool
}

// NewSellerRepository returns a Postgres-backed implementation.
func NewSellerRepository(pool *pgxpool.Pool) SellerRepository {
	return &sellerRepository{pool: pool}
}

func (r *sellerRepository) Create(ctx context.Context, profile *domain.SellerProfile) error {
	const query = `
        INSERT INTO sellers (user_id, business_name, business_address, business_contact, display_name, is_verified, is_seller_mode)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, followers, ratings, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.BusinessName,
		profile.BusinessAddress,
		profile.BusinessContact,
		profile.DisplayName,
		profile.IsVerified,
		profile.IsSellerMode,
	).Scan(&profile.ID, &profile.Followers, &profile.Ratings, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *sellerRepository) Update(ctx context.Context, profile *domain.SellerProfile) error {
	const query = `
        UPDATE sellers SET business_name=$1, business_address=$2, business_contact=$3,
               display_name=$4, is_verified=$5, is_seller_mode=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		profile.BusinessName,
		profile.BusinessAddress,
		profile.BusinessContact,
		profile.DisplayName,
		profile.IsVerified,
		profile.IsSellerMode,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sellerRepository) GetByUserID(ctx context.Context, userID string) (*domain.SellerProfile, error) {
	const query = `
        SELECT id, user_id, business_name, business_address, business_contact, display_name,
               is_verified, is_seller_mode, followers, ratings, created_at, updated_at
        FROM sellers WHERE user_id=$1`

	var profile domain.SellerProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.BusinessName,
		&profile.BusinessAddress,
		&profile.BusinessContact,
		&profile.DisplayName,
		&profile.IsVerified,
		&profile.IsSellerMode,
		&profile.Followers,
		&profile.Ratings,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
