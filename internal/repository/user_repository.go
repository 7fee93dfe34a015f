package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/e-taas/session-service/internal/domain"
)

// UserRepository defines persistence access for marketplace identities.
type UserRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO users (username, email, password_hash, first_name, middle_name, last_name, address, contact_number, is_admin, is_seller)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		identity.FirstName,
		identity.MiddleName,
		identity.LastName,
		identity.Address,
		identity.ContactNumber,
		identity.IsAdmin,
		identity.IsSeller,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE users SET username=$1, email=$2, first_name=$3, middle_name=$4, last_name=$5,
               address=$6, contact_number=$7, is_admin=$8, is_seller=$9, updated_at=NOW()
        WHERE id=$10`

	cmd, err := r.pool.Exec(ctx, query,
		identity.Username,
		identity.Email,
		identity.FirstName,
		identity.MiddleName,
		identity.LastName,
		identity.Address,
		identity.ContactNumber,
		identity.IsAdmin,
		identity.IsSeller,
		identity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.getOne(ctx, `WHERE u.id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.getOne(ctx, `WHERE u.email=$1`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.getOne(ctx, `WHERE u.username=$1`, username)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// getOne loads an identity together with its seller profile, if any.
func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*domain.Identity, error) {
	query := `
        SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.middle_name, u.last_name,
               u.address, u.contact_number, u.is_admin, u.is_seller, u.created_at, u.updated_at,
               s.id, s.business_name, s.business_address, s.business_contact, s.display_name,
               s.is_verified, s.is_seller_mode, s.followers, s.ratings, s.created_at, s.updated_at
        FROM users u
        LEFT JOIN sellers s ON s.user_id = u.id ` + where

	var (
		identity domain.Identity
		sellerID *string
		seller   domain.SellerProfile
	)
	var (
		businessName, businessAddress, businessContact, displayName *string
		isVerified, isSellerMode                                    *bool
		followers                                                   *int
		ratings                                                     *float64
		sellerCreatedAt, sellerUpdatedAt                            *time.Time
	)

	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&identity.FirstName,
		&identity.MiddleName,
		&identity.LastName,
		&identity.Address,
		&identity.ContactNumber,
		&identity.IsAdmin,
		&identity.IsSeller,
		&identity.CreatedAt,
		&identity.UpdatedAt,
		&sellerID,
		&businessName,
		&businessAddress,
		&businessContact,
		&displayName,
		&isVerified,
		&isSellerMode,
		&followers,
		&ratings,
		&sellerCreatedAt,
		&sellerUpdatedAt,
	); err != nil {
		return nil, err
	}

	if sellerID != nil {
		seller.ID = *sellerID
		seller.UserID = identity.ID
		seller.BusinessName = deref(businessName)
		seller.BusinessAddress = deref(businessAddress)
		seller.BusinessContact = deref(businessContact)
		seller.DisplayName = deref(displayName)
		if isVerified != nil {
			seller.IsVerified = *isVerified
		}
		if isSellerMode != nil {
			seller.IsSellerMode = *isSellerMode
		}
		if followers != nil {
			seller.Followers = *followers
		}
		if ratings != nil {
			seller.Ratings = *ratings
		}
		if sellerCreatedAt != nil {
			seller.CreatedAt = *sellerCreatedAt
		}
		if sellerUpdatedAt != nil {
			seller.UpdatedAt = *sellerUpdatedAt
		}
		identity.Seller = &seller
	}

	return &identity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
