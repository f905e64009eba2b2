package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"contractpay/internal/model"
	"contractpay/pkg/metrics"
)

// observe times a query for the db duration histogram.
func observe(operation, table string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	}
}

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	defer observe("insert", "users")()
	query := `
        INSERT INTO users (username, email, full_name, user_type, bio, profile_image, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.FullName,
		u.UserType,
		u.Bio,
		u.ProfileImage,
		u.PasswordHash,
	).Scan(&u.ID)
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer observe("select", "users")()
	query := `
        SELECT id, username, email, full_name, user_type, bio, profile_image, password_hash, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.UserType,
		&u.Bio, &u.ProfileImage, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	defer observe("select", "users")()
	query := `
        SELECT id, username, email, full_name, user_type, bio, profile_image, password_hash, created_at
        FROM users
        WHERE username = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.UserType,
		&u.Bio, &u.ProfileImage, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
