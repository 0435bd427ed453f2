package service

import (
	"context"
	"sync"
	"time"

	"certgate/internal/domain"
	"certgate/internal/session"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// --- MockSubmissionRepository ---
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListAll(ctx context.Context) ([]*domain.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) UpdateStatusIfPending(ctx context.Context, id string, status domain.SubmissionStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

// --- MockSessionStore ---
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (*session.Session, error) {
	args := m.Called(ctx, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) ActiveSessionForUser(ctx context.Context, userID string) (*session.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

// --- RecordingNotifier ---
// The fan-out runs on a detached goroutine, so this mock records calls behind
// a mutex and exposes a done channel tests can wait on.
type RecordingNotifier struct {
	mu sync.Mutex

	SubmissionCalls int
	AdminCalls      int
	LastAdmins      []*domain.User

	Done chan struct{}
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{Done: make(chan struct{}, 2)}
}

func (n *RecordingNotifier) NotifySubmission(ctx context.Context, submission *domain.Submission, user *domain.User) {
	n.mu.Lock()
	n.SubmissionCalls++
	n.mu.Unlock()
	n.Done <- struct{}{}
}

func (n *RecordingNotifier) NotifyAdmins(ctx context.Context, admins []*domain.User, submission *domain.Submission, user *domain.User) {
	n.mu.Lock()
	n.AdminCalls++
	n.LastAdmins = admins
	n.mu.Unlock()
	n.Done <- struct{}{}
}

// --- RecordingEffects ---
type RecordingEffects struct {
	mu sync.Mutex

	Calls      int
	LastAction domain.ReviewAction
	LastBy     string
}

func (e *RecordingEffects) ApplyResolution(ctx context.Context, submission *domain.Submission, action domain.ReviewAction, resolvedBy string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	e.LastAction = action
	e.LastBy = resolvedBy
}

func (e *RecordingEffects) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Calls
}
