package service

import (
	"context"
	"testing"
	"time"

	"certgate/internal/domain"
	"certgate/internal/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func waitForNotifier(t *testing.T, n *RecordingNotifier, calls int) {
	t.Helper()
	for i := 0; i < calls; i++ {
		select {
		case <-n.Done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for notifier call %d of %d", i+1, calls)
		}
	}
}

func TestSubmissionService_Create(t *testing.T) {
	set := quiz.DefaultSet()
	admins := []*domain.User{
		{ID: "admin-1", Username: "mod", IsAdmin: true},
	}

	answers := map[string]string{}
	for _, q := range set.Questions() {
		answers[q.ID] = q.Correct
	}

	submissionRepo := new(MockSubmissionRepository)
	userRepo := new(MockUserRepository)
	notifier := NewRecordingNotifier()

	submitter := domain.NewUser("111222333", "gamer")
	userRepo.On("GetUserByID", mock.Anything, "111222333").Return(submitter, nil).Once()
	userRepo.On("ListAdmins", mock.Anything).Return(admins, nil).Once()
	submissionRepo.On("Create", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		return sub.UserID == "111222333" &&
			sub.Score == 100 &&
			sub.Passed &&
			sub.Status == domain.StatusPending &&
			len(sub.ID) == 26
	})).Return(nil).Once()

	svc := NewSubmissionService(submissionRepo, userRepo, set, notifier)

	submission, err := svc.Create(context.Background(), "111222333", answers)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, submission.Status)
	assert.Equal(t, 100, submission.Score)
	assert.True(t, submission.Passed)

	waitForNotifier(t, notifier, 2)
	assert.Equal(t, 1, notifier.SubmissionCalls)
	assert.Equal(t, 1, notifier.AdminCalls)
	assert.Equal(t, admins, notifier.LastAdmins)

	submissionRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestSubmissionService_Create_PartialAnswersScorePending(t *testing.T) {
	set := quiz.DefaultSet()
	questions := set.Questions()

	// Two correct out of seven rounds to 29, below the pass mark.
	answers := map[string]string{
		questions[0].ID: questions[0].Correct,
		questions[1].ID: questions[1].Correct,
	}

	submissionRepo := new(MockSubmissionRepository)
	userRepo := new(MockUserRepository)
	notifier := NewRecordingNotifier()

	userRepo.On("GetUserByID", mock.Anything, "111222333").
		Return(domain.NewUser("111222333", "gamer"), nil).Once()
	userRepo.On("ListAdmins", mock.Anything).Return([]*domain.User{}, nil).Once()
	submissionRepo.On("Create", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		return sub.Score == 29 && !sub.Passed && sub.Status == domain.StatusPending
	})).Return(nil).Once()

	svc := NewSubmissionService(submissionRepo, userRepo, set, notifier)

	submission, err := svc.Create(context.Background(), "111222333", answers)
	require.NoError(t, err)
	assert.Equal(t, 29, submission.Score)
	assert.False(t, submission.Passed)

	// A failing score still goes to review, and still notifies.
	waitForNotifier(t, notifier, 2)
	submissionRepo.AssertExpectations(t)
}

func TestSubmissionService_Create_EmptyAnswers(t *testing.T) {
	submissionRepo := new(MockSubmissionRepository)
	userRepo := new(MockUserRepository)
	notifier := NewRecordingNotifier()

	userRepo.On("GetUserByID", mock.Anything, "111222333").
		Return(domain.NewUser("111222333", "gamer"), nil).Once()
	userRepo.On("ListAdmins", mock.Anything).Return([]*domain.User{}, nil).Once()
	submissionRepo.On("Create", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		return sub.Score == 0 && !sub.Passed && sub.Status == domain.StatusPending
	})).Return(nil).Once()

	svc := NewSubmissionService(submissionRepo, userRepo, quiz.DefaultSet(), notifier)

	submission, err := svc.Create(context.Background(), "111222333", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, submission.Score)
	assert.False(t, submission.Passed)
	assert.Equal(t, domain.StatusPending, submission.Status)

	waitForNotifier(t, notifier, 2)
	submissionRepo.AssertExpectations(t)
}

func TestSubmissionService_Create_UnknownUser(t *testing.T) {
	submissionRepo := new(MockSubmissionRepository)
	userRepo := new(MockUserRepository)
	userRepo.On("GetUserByID", mock.Anything, "ghost").Return(nil, nil).Once()

	svc := NewSubmissionService(submissionRepo, userRepo, quiz.DefaultSet(), NewRecordingNotifier())

	_, err := svc.Create(context.Background(), "ghost", map[string]string{"q1": "a"})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUnauthorized, domainErr.Code)
	submissionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmissionService_Get(t *testing.T) {
	owner := &domain.User{ID: "owner-1", Username: "gamer"}
	admin := &domain.User{ID: "admin-1", Username: "mod", IsAdmin: true}
	stranger := &domain.User{ID: "stranger-1", Username: "lurker"}

	stored := &domain.Submission{
		ID:     "01HXAMPLESUBMISSION0000000",
		UserID: owner.ID,
		Status: domain.StatusPending,
	}

	cases := []struct {
		name      string
		requester *domain.User
		wantCode  domain.ErrorCode
	}{
		{"Owner", owner, ""},
		{"Admin", admin, ""},
		{"Stranger", stranger, domain.CodeUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			submissionRepo := new(MockSubmissionRepository)
			submissionRepo.On("GetByID", mock.Anything, stored.ID).Return(stored, nil).Once()

			svc := NewSubmissionService(submissionRepo, new(MockUserRepository), quiz.DefaultSet(), NewRecordingNotifier())

			submission, err := svc.Get(context.Background(), stored.ID, tc.requester)
			if tc.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, stored.ID, submission.ID)
				return
			}
			var domainErr *domain.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tc.wantCode, domainErr.Code)
		})
	}
}

func TestSubmissionService_Get_NotFound(t *testing.T) {
	submissionRepo := new(MockSubmissionRepository)
	submissionRepo.On("GetByID", mock.Anything, "missing").Return(nil, nil).Once()

	svc := NewSubmissionService(submissionRepo, new(MockUserRepository), quiz.DefaultSet(), NewRecordingNotifier())

	_, err := svc.Get(context.Background(), "missing", &domain.User{ID: "admin", IsAdmin: true})
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeSubmissionNotFound, domainErr.Code)
}

func TestSubmissionService_List(t *testing.T) {
	stored := []*domain.Submission{
		{ID: "01HXAMPLESUBMISSION0000002", Status: domain.StatusPending},
		{ID: "01HXAMPLESUBMISSION0000001", Status: domain.StatusApproved},
	}

	submissionRepo := new(MockSubmissionRepository)
	submissionRepo.On("ListAll", mock.Anything).Return(stored, nil).Once()

	svc := NewSubmissionService(submissionRepo, new(MockUserRepository), quiz.DefaultSet(), NewRecordingNotifier())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}
