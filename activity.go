package auth

import (
	"context"
	"time"
)

// ActivityEventType names an account event
type ActivityEventType string

const (
	ActivityEventSignup               ActivityEventType = "auth.signup"
	ActivityEventLoginSuccess         ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure         ActivityEventType = "auth.login.failure"
	ActivityEventFederatedLogin       ActivityEventType = "auth.federated.login"
	ActivityEventPasswordResetRequest ActivityEventType = "auth.password.reset_requested"
	ActivityEventPasswordResetSuccess ActivityEventType = "auth.password.reset"
	ActivityEventEmailVerified        ActivityEventType = "auth.email.verified"
)

// ActivityEvent describes something that happened to an account. Failed
// logins carry only the attempted Email.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Email      string
	Role       UserRole
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink receives account events. Errors are logged by the Service
// and never fail the request that produced the event.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to ActivitySink. A nil func discards.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

var discardActivity ActivitySink = ActivitySinkFunc(nil)

func activitySinkOrDiscard(s ActivitySink) ActivitySink {
	if s == nil {
		return discardActivity
	}
	return s
}
