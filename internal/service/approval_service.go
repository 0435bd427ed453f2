package service

import (
	"context"
	"time"

	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/repository"

	"go.uber.org/zap"
)

// effectsTimeout bounds the role-grant/DM/edit sequence for one resolution.
const effectsTimeout = 30 * time.Second

// ResolutionEffects performs the external side effects of a resolution: role
// grants, outcome DM, notification edit. Implementations are best-effort and
// report failures via logs only.
type ResolutionEffects interface {
	ApplyResolution(ctx context.Context, submission *domain.Submission, action domain.ReviewAction, resolvedBy string)
}

// ApprovalService drives the pending→approved/denied transition. Both the
// admin dashboard and the Discord button handler call the same Resolve.
type ApprovalService interface {
	Resolve(ctx context.Context, submissionID string, action domain.ReviewAction, resolvedBy string) (*domain.Submission, error)
}

type approvalServiceImpl struct {
	submissionRepo repository.SubmissionRepository
	effects        ResolutionEffects

	// async controls whether side effects run detached from the caller.
	// Disabled only in tests, where detached goroutines make assertions racy.
	async bool
}

// NewApprovalService creates a new instance of ApprovalService.
func NewApprovalService(submissionRepo repository.SubmissionRepository, effects ResolutionEffects) ApprovalService {
	return &approvalServiceImpl{
		submissionRepo: submissionRepo,
		effects:        effects,
		async:          true,
	}
}

// Resolve performs the guarded status transition and, only if this caller won
// it, fires the side effects. The database write is authoritative: side
// effects cannot fail the resolution, and a losing caller triggers none.
func (s *approvalServiceImpl) Resolve(ctx context.Context, submissionID string, action domain.ReviewAction, resolvedBy string) (*domain.Submission, error) {
	status := action.Status()

	won, err := s.submissionRepo.UpdateStatusIfPending(ctx, submissionID, status)
	if err != nil {
		return nil, domain.NewInternalError("failed to update submission status", err)
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load submission", err)
	}
	if submission == nil {
		return nil, domain.NewSubmissionNotFoundError(submissionID)
	}

	if !won {
		// The row exists but was already terminal, or a racing resolution got
		// there first. Either way this caller performs no side effects.
		return submission, domain.NewAlreadyResolvedError(submissionID)
	}

	logger.Get().Info("Submission resolved",
		zap.String("submission_id", submission.ID),
		zap.String("status", string(status)),
		zap.String("resolved_by", resolvedBy))

	if s.async {
		go s.applyEffects(submission, action, resolvedBy)
	} else {
		s.applyEffects(submission, action, resolvedBy)
	}

	return submission, nil
}

func (s *approvalServiceImpl) applyEffects(submission *domain.Submission, action domain.ReviewAction, resolvedBy string) {
	ctx, cancel := context.WithTimeout(context.Background(), effectsTimeout)
	defer cancel()
	s.effects.ApplyResolution(ctx, submission, action, resolvedBy)
}
