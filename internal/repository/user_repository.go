package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certgate/internal/domain"
	"certgate/internal/repository/models"
	"certgate/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	ListAdmins(ctx context.Context) ([]*domain.User, error)
}

// sqlxUserRepository implements UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:              m.ID,
		Username:        m.Username,
		Discriminator:   util.NullStringToString(m.Discriminator),
		AvatarURL:       util.NullStringToString(m.AvatarURL),
		IsAdmin:         m.IsAdmin,
		SubmissionCount: m.SubmissionCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:              u.ID,
		Username:        u.Username,
		Discriminator:   util.StringToNullString(u.Discriminator),
		AvatarURL:       util.StringToNullString(u.AvatarURL),
		IsAdmin:         u.IsAdmin,
		SubmissionCount: u.SubmissionCount,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// CreateUser inserts a new user into the database.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	model.CreatedAt = time.Now()
	model.UpdatedAt = model.CreatedAt

	query := `INSERT INTO users (id, username, discriminator, avatar_url, is_admin, submission_count, created_at, updated_at)
	          VALUES (:id, :username, :discriminator, :avatar_url, :is_admin, :submission_count, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetUserByID retrieves a user by their Discord ID. Returns (nil, nil) when
// the user does not exist.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return toDomainUser(&user), nil
}

// UpdateProfile refreshes the mutable profile fields (username, discriminator,
// avatar). The admin flag and submission counter are never touched here.
func (r *sqlxUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	model.UpdatedAt = time.Now()

	query := `UPDATE users SET
	            username = :username,
	            discriminator = :discriminator,
	            avatar_url = :avatar_url,
	            updated_at = :updated_at
	          WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	user.UpdatedAt = model.UpdatedAt
	return nil
}

// ListAdmins returns every user with the administrator flag set.
func (r *sqlxUserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	var rows []models.User
	query := `SELECT * FROM users WHERE is_admin = TRUE ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	admins := make([]*domain.User, 0, len(rows))
	for i := range rows {
		admins = append(admins, toDomainUser(&rows[i]))
	}
	return admins, nil
}
