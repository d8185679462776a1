package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Purpose scopes a one time code
type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

// DefaultOTPTTL is how long an issued code stays valid
const DefaultOTPTTL = 10 * time.Minute

// Valid reports whether p is one of the known purposes
func (p Purpose) Valid() bool {
	return p == PurposeEmailVerification || p == PurposePasswordReset
}

var otpSpace = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random 6 digit code, left padded.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CodesEqual compares two codes in constant time
func CodesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type otpKey struct {
	email   string
	purpose Purpose
}

type otpEntry struct {
	code      string
	createdAt time.Time
	expiresAt time.Time
}

// MemoryLedger keeps codes in process memory. Entries are only removed on
// consume, discard or when a stale entry is looked up.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[otpKey]otpEntry
	ttl     time.Duration
	now     Clock
}

var _ OTPLedger = (*MemoryLedger)(nil)

// MemoryLedgerOption configures a MemoryLedger
type MemoryLedgerOption func(*MemoryLedger)

// WithLedgerTTL overrides DefaultOTPTTL
func WithLedgerTTL(ttl time.Duration) MemoryLedgerOption {
	return func(l *MemoryLedger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLedgerClock sets the time source
func WithLedgerClock(now Clock) MemoryLedgerOption {
	return func(l *MemoryLedger) {
		if now != nil {
			l.now = now
		}
	}
}

func NewMemoryLedger(opts ...MemoryLedgerOption) *MemoryLedger {
	l := &MemoryLedger{
		entries: make(map[otpKey]otpEntry),
		ttl:     DefaultOTPTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLedger) Issue(ctx context.Context, email string, purpose Purpose) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[otpKey{email, purpose}] = otpEntry{
		code:      code,
		createdAt: now,
		expiresAt: now.Add(l.ttl),
	}

	return code, nil
}

func (l *MemoryLedger) Consume(ctx context.Context, email string, purpose Purpose, code string) (bool, error) {
	return l.lookup(otpKey{email, purpose}, code, true), nil
}

func (l *MemoryLedger) Check(ctx context.Context, email string, purpose Purpose, code string) (bool, error) {
	return l.lookup(otpKey{email, purpose}, code, false), nil
}

func (l *MemoryLedger) Discard(ctx context.Context, email string, purpose Purpose) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, otpKey{email, purpose})
	return nil
}

// Len returns the number of stored entries, live or stale
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *MemoryLedger) lookup(key otpKey, code string, consume bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return false
	}

	if l.now().After(entry.expiresAt) {
		delete(l.entries, key)
		return false
	}

	// a wrong code leaves the entry in place until it expires
	if !CodesEqual(entry.code, code) {
		return false
	}

	if consume {
		delete(l.entries, key)
	}

	return true
}
