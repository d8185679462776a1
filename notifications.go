package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Notifier delivers the account emails the service sends
type Notifier interface {
	Welcome(ctx context.Context, user *User) error
	PasswordResetCode(ctx context.Context, user *User, code string, ttl time.Duration) error
	VerificationCode(ctx context.Context, user *User, code string, ttl time.Duration) error
}

// DefaultBackgroundTimeout bounds a single background task
const DefaultBackgroundTimeout = 30 * time.Second

// Dispatcher runs detached background tasks. A task gets its own context,
// independent of the request that started it, and its error is logged.
type Dispatcher struct {
	wg      sync.WaitGroup
	logger  Logger
	timeout time.Duration
	errs    chan<- error
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithDispatcherTimeout bounds each task
func WithDispatcherTimeout(d time.Duration) DispatcherOption {
	return func(b *Dispatcher) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithDispatcherErrors also forwards task errors to ch. Sends never block.
func WithDispatcherErrors(ch chan<- error) DispatcherOption {
	return func(b *Dispatcher) {
		b.errs = ch
	}
}

func NewDispatcher(logger Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = defLogger()
	}
	d := &Dispatcher{
		logger:  logger,
		timeout: DefaultBackgroundTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go starts task in the background and returns immediately
func (d *Dispatcher) Go(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.run(ctx, task)
		if err == nil {
			return
		}

		d.logger.Error("background task failed", "task", name, "error", err)
		if d.errs != nil {
			select {
			case d.errs <- err:
			default:
			}
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerrors.New("background task panicked", goerrors.CategoryInternal).
				WithMetadata(map[string]any{"panic": r})
		}
	}()
	return task(ctx)
}

// Wait blocks until every started task finished or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
