package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certgate/internal/domain"
	"certgate/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// SubmissionRepository defines the interface for submission data operations.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	ListAll(ctx context.Context) ([]*domain.Submission, error)
	// UpdateStatusIfPending performs the guarded status transition. The bool
	// result reports whether this caller won the transition; a false with a
	// nil error means the submission was already terminal (or is gone).
	UpdateStatusIfPending(ctx context.Context, id string, status domain.SubmissionStatus) (bool, error)
}

type sqlxSubmissionRepository struct {
	db *sqlx.DB
}

// NewSQLXSubmissionRepository creates a new instance of sqlxSubmissionRepository.
func NewSQLXSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &sqlxSubmissionRepository{db: db}
}

func toDomainSubmission(m *models.Submission) *domain.Submission {
	if m == nil {
		return nil
	}
	return &domain.Submission{
		ID:        m.ID,
		UserID:    m.UserID,
		Answers:   map[string]string(m.Answers),
		Score:     m.Score,
		Passed:    m.Passed,
		Status:    domain.SubmissionStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainSubmission(s *domain.Submission) *models.Submission {
	if s == nil {
		return nil
	}
	return &models.Submission{
		ID:        s.ID,
		UserID:    s.UserID,
		Answers:   models.AnswerMap(s.Answers),
		Score:     s.Score,
		Passed:    s.Passed,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

const submissionWithUserColumns = `
	s.id, s.user_id, s.answers, s.score, s.passed, s.status, s.created_at, s.updated_at,
	u.id AS "user.id", u.username AS "user.username", u.discriminator AS "user.discriminator",
	u.avatar_url AS "user.avatar_url", u.is_admin AS "user.is_admin",
	u.submission_count AS "user.submission_count",
	u.created_at AS "user.created_at", u.updated_at AS "user.updated_at"`

// Create inserts the submission and increments the owner's submission counter
// in a single transaction.
func (r *sqlxSubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	model := fromDomainSubmission(submission)
	model.CreatedAt = time.Now()
	model.UpdatedAt = model.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO submissions (id, user_id, answers, score, passed, status, created_at, updated_at)
	           VALUES (:id, :user_id, :answers, :score, :passed, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, model); err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	increment := `UPDATE users SET submission_count = submission_count + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, increment, model.UserID); err != nil {
		return fmt.Errorf("failed to increment submission count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}

	submission.CreatedAt = model.CreatedAt
	submission.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves one submission joined with its owning user. Returns
// (nil, nil) when the id is unknown.
func (r *sqlxSubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	var row models.SubmissionWithUser
	query := `SELECT ` + submissionWithUserColumns + `
	          FROM submissions s
	          INNER JOIN users u ON u.id = s.user_id
	          WHERE s.id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission by id: %w", err)
	}

	submission := toDomainSubmission(&row.Submission)
	submission.User = toDomainUser(&row.User)
	return submission, nil
}

// ListAll returns every submission joined with its owning user, most recent
// first.
func (r *sqlxSubmissionRepository) ListAll(ctx context.Context) ([]*domain.Submission, error) {
	var rows []models.SubmissionWithUser
	query := `SELECT ` + submissionWithUserColumns + `
	          FROM submissions s
	          INNER JOIN users u ON u.id = s.user_id
	          ORDER BY s.created_at DESC`

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	submissions := make([]*domain.Submission, 0, len(rows))
	for i := range rows {
		submission := toDomainSubmission(&rows[i].Submission)
		submission.User = toDomainUser(&rows[i].User)
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// UpdateStatusIfPending transitions a pending submission to a terminal status.
// The WHERE guard makes sure at most one of two racing resolutions wins.
func (r *sqlxSubmissionRepository) UpdateStatusIfPending(ctx context.Context, id string, status domain.SubmissionStatus) (bool, error) {
	query := `UPDATE submissions SET status = $1, updated_at = $2 WHERE id = $3 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, string(status), time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update submission status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
