package auth_test

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"

	"github.com/zelvyn/zelvyn-api"
)

// memoryUsers is an in-process auth.Users with the same conflict and
// not found behavior as the database store.
type memoryUsers struct {
	mu       sync.Mutex
	byEmail  map[string]*auth.User
	trackErr error
	// stale usernames are reported free once, as if checked before a racing insert
	stale map[string]bool
}

func newMemoryUsers(users ...*auth.User) *memoryUsers {
	m := &memoryUsers{byEmail: map[string]*auth.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func notFound() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, notFound()
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID.String() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound()
}

func (m *memoryUsers) Register(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, auth.ErrUserExists
		}
	}
	cp := *user
	m.byEmail[user.Email] = &cp
	return user, nil
}

func (m *memoryUsers) Update(_ context.Context, user *auth.User, _ ...string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; !ok {
		return nil, notFound()
	}
	cp := *user
	m.byEmail[user.Email] = &cp
	return user, nil
}

func (m *memoryUsers) TrackLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trackErr != nil {
		return m.trackErr
	}
	for _, u := range m.byEmail {
		if u.ID.String() == id {
			u.LastLoginAt = &at
			return nil
		}
	}
	return notFound()
}

func (m *memoryUsers) ResetPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID.String() == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return notFound()
}

func (m *memoryUsers) MarkEmailVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID.String() == id {
			u.IsEmailVerified = true
			return nil
		}
	}
	return notFound()
}

func (m *memoryUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale[username] {
		delete(m.stale, username)
		return false, nil
	}
	for _, u := range m.byEmail {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) staleUsername(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale == nil {
		m.stale = map[string]bool{}
	}
	m.stale[username] = true
}

func (m *memoryUsers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

func (m *memoryUsers) remove(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Welcome(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockNotifier) PasswordResetCode(ctx context.Context, user *auth.User, code string, ttl time.Duration) error {
	args := m.Called(ctx, user, code, ttl)
	return args.Error(0)
}

func (m *MockNotifier) VerificationCode(ctx context.Context, user *auth.User, code string, ttl time.Duration) error {
	args := m.Called(ctx, user, code, ttl)
	return args.Error(0)
}

// captureNotifier records the last code it was asked to send
type captureNotifier struct {
	mu      sync.Mutex
	codes   map[string]string
	welcome []string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{codes: map[string]string{}}
}

func (n *captureNotifier) Welcome(_ context.Context, user *auth.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcome = append(n.welcome, user.Email)
	return nil
}

func (n *captureNotifier) PasswordResetCode(_ context.Context, user *auth.User, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[string(auth.PurposePasswordReset)+":"+user.Email] = code
	return nil
}

func (n *captureNotifier) VerificationCode(_ context.Context, user *auth.User, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[string(auth.PurposeEmailVerification)+":"+user.Email] = code
	return nil
}

func (n *captureNotifier) code(purpose auth.Purpose, email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[string(purpose)+":"+email]
}

func (n *captureNotifier) welcomed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.welcome...)
}
