package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/zelvyn/zelvyn-api"
)

// OTPCode is one live code per email and purpose
type OTPCode struct {
	bun.BaseModel `bun:"table:otp_codes,alias:otp"`

	Email     string       `bun:"email,pk"`
	Purpose   auth.Purpose `bun:"purpose,pk"`
	Code      string       `bun:"code,notnull"`
	CreatedAt time.Time    `bun:"created_at,notnull"`
	ExpiresAt time.Time    `bun:"expires_at,notnull"`
}

// OTPLedger keeps codes in the otp_codes table so every instance of the
// service sees the same codes. Expiry is lazy, as with auth.MemoryLedger.
type OTPLedger struct {
	db  *bun.DB
	ttl time.Duration
	now auth.Clock
}

var _ auth.OTPLedger = (*OTPLedger)(nil)

func NewOTPLedger(db *bun.DB, ttl time.Duration, now auth.Clock) *OTPLedger {
	if ttl <= 0 {
		ttl = auth.DefaultOTPTTL
	}
	if now == nil {
		now = time.Now
	}
	return &OTPLedger{db: db, ttl: ttl, now: now}
}

// Issue stores a fresh code, replacing any earlier one for the same key
func (l *OTPLedger) Issue(ctx context.Context, email string, purpose auth.Purpose) (string, error) {
	code, err := auth.GenerateCode()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate otp")
	}

	now := l.now().UTC()
	record := &OTPCode{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl),
	}

	_, err = l.db.NewInsert().
		Model(record).
		On("CONFLICT (email, purpose) DO UPDATE").
		Set("code = EXCLUDED.code").
		Set("created_at = EXCLUDED.created_at").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store otp")
	}

	return code, nil
}

// Consume deletes the entry when code matches. The delete is conditioned on
// the code so two concurrent consumers cannot both succeed.
func (l *OTPLedger) Consume(ctx context.Context, email string, purpose auth.Purpose, code string) (bool, error) {
	ok, err := l.lookup(ctx, email, purpose, code)
	if err != nil || !ok {
		return false, err
	}

	res, err := l.db.NewDelete().
		Model((*OTPCode)(nil)).
		Where("email = ?", email).
		Where("purpose = ?", purpose).
		Where("code = ?", code).
		Exec(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume otp")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read affected rows")
	}
	return n == 1, nil
}

// Check reports whether code is live without consuming it
func (l *OTPLedger) Check(ctx context.Context, email string, purpose auth.Purpose, code string) (bool, error) {
	return l.lookup(ctx, email, purpose, code)
}

func (l *OTPLedger) Discard(ctx context.Context, email string, purpose auth.Purpose) error {
	_, err := l.db.NewDelete().
		Model((*OTPCode)(nil)).
		Where("email = ?", email).
		Where("purpose = ?", purpose).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to discard otp")
	}
	return nil
}

// Count returns the number of stored rows, live or stale
func (l *OTPLedger) Count(ctx context.Context) (int, error) {
	return l.db.NewSelect().Model((*OTPCode)(nil)).Count(ctx)
}

func (l *OTPLedger) lookup(ctx context.Context, email string, purpose auth.Purpose, code string) (bool, error) {
	record := &OTPCode{}
	err := l.db.NewSelect().
		Model(record).
		Where("email = ?", email).
		Where("purpose = ?", purpose).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load otp")
	}

	if l.now().After(record.ExpiresAt) {
		if err := l.Discard(ctx, email, purpose); err != nil {
			return false, err
		}
		return false, nil
	}

	// a wrong code leaves the entry in place until it expires
	if !auth.CodesEqual(record.Code, code) {
		return false, nil
	}

	return true, nil
}
