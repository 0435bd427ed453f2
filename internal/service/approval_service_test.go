package service

import (
	"context"
	"testing"

	"certgate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newSyncApprovalService builds the service with side effects applied inline,
// so the test can assert on them without sleeping.
func newSyncApprovalService(repo *MockSubmissionRepository, effects *RecordingEffects) ApprovalService {
	svc := NewApprovalService(repo, effects).(*approvalServiceImpl)
	svc.async = false
	return svc
}

func TestApprovalService_Resolve_Approve(t *testing.T) {
	stored := &domain.Submission{
		ID:     "01HXAMPLESUBMISSION0000000",
		UserID: "111222333",
		Status: domain.StatusApproved,
	}

	repo := new(MockSubmissionRepository)
	effects := new(RecordingEffects)
	repo.On("UpdateStatusIfPending", mock.Anything, stored.ID, domain.StatusApproved).
		Return(true, nil).Once()
	repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	svc := newSyncApprovalService(repo, effects)

	submission, err := svc.Resolve(context.Background(), stored.ID, domain.ActionApprove, "<@mod-1>")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, submission.Status)

	assert.Equal(t, 1, effects.CallCount())
	assert.Equal(t, domain.ActionApprove, effects.LastAction)
	assert.Equal(t, "<@mod-1>", effects.LastBy)
	repo.AssertExpectations(t)
}

func TestApprovalService_Resolve_Deny(t *testing.T) {
	stored := &domain.Submission{
		ID:     "01HXAMPLESUBMISSION0000000",
		UserID: "111222333",
		Status: domain.StatusDenied,
	}

	repo := new(MockSubmissionRepository)
	effects := new(RecordingEffects)
	repo.On("UpdateStatusIfPending", mock.Anything, stored.ID, domain.StatusDenied).
		Return(true, nil).Once()
	repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	svc := newSyncApprovalService(repo, effects)

	submission, err := svc.Resolve(context.Background(), stored.ID, domain.ActionDeny, "<@mod-1>")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDenied, submission.Status)
	assert.Equal(t, domain.ActionDeny, effects.LastAction)
}

func TestApprovalService_Resolve_LoserTriggersNoEffects(t *testing.T) {
	// Already resolved by someone else: the conditional update matches no
	// rows, so this caller gets the current state and fires nothing.
	stored := &domain.Submission{
		ID:     "01HXAMPLESUBMISSION0000000",
		UserID: "111222333",
		Status: domain.StatusDenied,
	}

	repo := new(MockSubmissionRepository)
	effects := new(RecordingEffects)
	repo.On("UpdateStatusIfPending", mock.Anything, stored.ID, domain.StatusApproved).
		Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	svc := newSyncApprovalService(repo, effects)

	submission, err := svc.Resolve(context.Background(), stored.ID, domain.ActionApprove, "<@mod-2>")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeAlreadyResolved, domainErr.Code)

	// The loser still learns the winning state.
	require.NotNil(t, submission)
	assert.Equal(t, domain.StatusDenied, submission.Status)
	assert.Equal(t, 0, effects.CallCount())
}

func TestApprovalService_Resolve_NotFound(t *testing.T) {
	repo := new(MockSubmissionRepository)
	effects := new(RecordingEffects)
	repo.On("UpdateStatusIfPending", mock.Anything, "missing", domain.StatusApproved).
		Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil).Once()

	svc := newSyncApprovalService(repo, effects)

	_, err := svc.Resolve(context.Background(), "missing", domain.ActionApprove, "<@mod-1>")
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeSubmissionNotFound, domainErr.Code)
	assert.Equal(t, 0, effects.CallCount())
}
