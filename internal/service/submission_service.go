package service

import (
	"context"
	"time"

	"certgate/internal/domain"
	"certgate/internal/logger"
	"certgate/internal/quiz"
	"certgate/internal/repository"
	"certgate/internal/util"

	"go.uber.org/zap"
)

// notifyTimeout bounds the whole notification fan-out for one submission.
const notifyTimeout = 30 * time.Second

// SubmissionNotifier is the notification fan-out: a channel post with review
// controls plus condensed DMs to every administrator. Implementations are
// best-effort and must swallow their own failures.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, submission *domain.Submission, user *domain.User)
	NotifyAdmins(ctx context.Context, admins []*domain.User, submission *domain.Submission, user *domain.User)
}

// SubmissionService handles quiz attempt creation and retrieval.
type SubmissionService interface {
	Create(ctx context.Context, userID string, answers map[string]string) (*domain.Submission, error)
	List(ctx context.Context) ([]*domain.Submission, error)
	Get(ctx context.Context, id string, requester *domain.User) (*domain.Submission, error)
}

type submissionServiceImpl struct {
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	set            *quiz.Set
	notifier       SubmissionNotifier
}

// NewSubmissionService creates a new instance of SubmissionService.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	set *quiz.Set,
	notifier SubmissionNotifier,
) SubmissionService {
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		set:            set,
		notifier:       notifier,
	}
}

// Create scores the answer set, persists a pending submission and kicks off
// the notification fan-out. The fan-out runs detached from the request:
// notification failure never fails submission creation.
func (s *submissionServiceImpl) Create(ctx context.Context, userID string, answers map[string]string) (*domain.Submission, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load submitting user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}

	result := s.set.Score(answers)
	submission := &domain.Submission{
		ID:      util.NewULID(),
		UserID:  user.ID,
		Answers: answers,
		Score:   result.Score,
		Passed:  result.Passed,
		Status:  domain.StatusPending,
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, domain.NewInternalError("failed to persist submission", err)
	}

	logger.Get().Info("Submission created",
		zap.String("submission_id", submission.ID),
		zap.String("user_id", user.ID),
		zap.Int("score", submission.Score),
		zap.Bool("passed", submission.Passed))

	go s.fanOut(submission, user)

	return submission, nil
}

// fanOut posts the channel notification and DMs the admins, at most once, no
// retries. It runs on its own context so an abandoned HTTP request does not
// cut it short.
func (s *submissionServiceImpl) fanOut(submission *domain.Submission, user *domain.User) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	s.notifier.NotifySubmission(ctx, submission, user)

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		logger.Get().Warn("Failed to list admins for notification",
			zap.String("submission_id", submission.ID),
			zap.Error(err))
		return
	}
	s.notifier.NotifyAdmins(ctx, admins, submission, user)
}

// List returns every submission joined with its owner, most recent first.
// Authorization (admin only) is the handler's concern.
func (s *submissionServiceImpl) List(ctx context.Context) ([]*domain.Submission, error) {
	submissions, err := s.submissionRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list submissions", err)
	}
	return submissions, nil
}

// Get returns one submission if the requester owns it or is an administrator.
func (s *submissionServiceImpl) Get(ctx context.Context, id string, requester *domain.User) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get submission", err)
	}
	if submission == nil {
		return nil, domain.NewSubmissionNotFoundError(id)
	}
	if submission.UserID != requester.ID && !requester.IsAdmin {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}
	return submission, nil
}
