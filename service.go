package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultOperationTimeout bounds a single service operation
const DefaultOperationTimeout = 10 * time.Second

// Service runs the account lifecycle: signup, login, federated login,
// password reset and email verification. Every operation returns a Result
// and never a raw error.
type Service struct {
	users       Users
	ledger      OTPLedger
	tokens      *TokenService
	federated   FederatedVerifier
	notifier    Notifier
	hasher      PasswordAuthenticator
	background  *Dispatcher
	activity    ActivitySink
	logger      Logger
	now         Clock
	timeout     time.Duration
	otpTTL      time.Duration
	defaultRole UserRole
	useHashID   bool
	phoneRegion string
}

// NewService returns a Service with in-process defaults for everything but
// the store and token service.
func NewService(users Users, tokens *TokenService) *Service {
	logger := defLogger()
	return &Service{
		users:       users,
		tokens:      tokens,
		ledger:      NewMemoryLedger(),
		notifier:    noopNotifier{},
		hasher:      Bcrypt{Cost: PasswordHashCost},
		background:  NewDispatcher(logger),
		activity:    discardActivity,
		logger:      logger,
		now:         time.Now,
		timeout:     DefaultOperationTimeout,
		otpTTL:      DefaultOTPTTL,
		defaultRole: RoleCustomer,
		phoneRegion: "US",
	}
}

// WithConfig applies the auth settings from cfg
func (s *Service) WithConfig(cfg Config) *Service {
	if ttl := cfg.GetOTPTTL(); ttl > 0 {
		s.otpTTL = ttl
	}
	if role := cfg.GetDefaultRole(); IsValidRole(role) {
		s.defaultRole = role
	}
	if region := cfg.GetPhoneRegion(); region != "" {
		s.phoneRegion = region
	}
	s.useHashID = cfg.GetUseHashID()
	return s
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Service) WithLedger(ledger OTPLedger) *Service {
	if ledger != nil {
		s.ledger = ledger
	}
	return s
}

func (s *Service) WithFederatedVerifier(verifier FederatedVerifier) *Service {
	s.federated = verifier
	return s
}

func (s *Service) WithNotifier(notifier Notifier) *Service {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

func (s *Service) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Service {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithDispatcher sets where detached notifications run
func (s *Service) WithDispatcher(d *Dispatcher) *Service {
	if d != nil {
		s.background = d
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Service) WithActivitySink(sink ActivitySink) *Service {
	s.activity = activitySinkOrDiscard(sink)
	return s
}

func (s *Service) WithClock(now Clock) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// TokenService returns the token service used to issue session tokens
func (s *Service) TokenService() *TokenService {
	return s.tokens
}

// Dispatcher returns the background task runner
func (s *Service) Dispatcher() *Dispatcher {
	return s.background
}

// handle runs op under the operation timeout and turns errors into results
func (s *Service) handle(ctx context.Context, op string, fn func(ctx context.Context) (Result, error)) Result {
	select {
	case <-ctx.Done():
		err := goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during "+op)
		s.logFailure(op, err)
		return ResultFromError(err)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := fn(ctx)
	if err != nil {
		s.logFailure(op, err)
		return ResultFromError(err)
	}

	return res
}

func (s *Service) logFailure(op string, err error) {
	args := []any{"op", op, "error", err}
	for _, attr := range goerrors.ToSlogAttributes(err) {
		args = append(args, attr)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && statusFor(richErr) < http.StatusInternalServerError {
		s.logger.Debug("auth operation rejected", args...)
		return
	}
	s.logger.Error("auth operation failed", args...)
}

func (s *Service) emit(ctx context.Context, eventType ActivityEventType, user *User, email string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Email:      email,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}
	if user != nil {
		event.UserID = user.ID.String()
		event.Email = user.Email
		event.Role = user.Role
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := activitySinkOrDiscard(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

// sessionResult issues a token for user and packs it with the sanitized record
func (s *Service) sessionResult(status int, user *User, message string) (Result, error) {
	token, err := s.tokens.Generate(NewIdentityFromUser(user))
	if err != nil {
		return Result{}, err
	}

	return Succeed(status, map[string]any{
		"user":  user.Sanitized(),
		"token": token,
	}, message).WithToken(token), nil
}

// welcome sends the welcome email in the background. Failures are logged only.
func (s *Service) welcome(user *User) {
	recipient := user.Sanitized()
	s.background.Go("welcome_email", func(ctx context.Context) error {
		return s.notifier.Welcome(ctx, recipient)
	})
}

func (s *Service) lookupUser(ctx context.Context, email string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// usernameFromEmail derives the default username from the email local part
func usernameFromEmail(username, email string) string {
	if username = strings.TrimSpace(username); username != "" {
		return username
	}

	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}

	return email
}

type noopNotifier struct{}

func (noopNotifier) Welcome(context.Context, *User) error { return nil }

func (noopNotifier) PasswordResetCode(context.Context, *User, string, time.Duration) error {
	return nil
}

func (noopNotifier) VerificationCode(context.Context, *User, string, time.Duration) error {
	return nil
}
