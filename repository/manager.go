package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager exposes the stores that share one database
type Manager struct {
	db       *bun.DB
	dialect  Dialect
	users    *Users
	otp      *OTPLedger
	profiles *Profiles
}

func NewRepositoryManager(db *bun.DB, dialect Dialect, otp *OTPLedger) *Manager {
	if otp == nil {
		otp = NewOTPLedger(db, 0, nil)
	}
	return &Manager{
		db:       db,
		dialect:  dialect,
		users:    NewUsersRepository(db),
		otp:      otp,
		profiles: NewProfilesRepository(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.otp == nil {
		return errors.New("repository otp ledger should be initialized")
	}

	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate brings the schema up to date
func (m *Manager) Migrate(ctx context.Context) error {
	return Migrate(ctx, m.db, m.dialect)
}

func (m *Manager) DB() *bun.DB {
	return m.db
}

func (m *Manager) Users() *Users {
	return m.users
}

func (m *Manager) OTPCodes() *OTPLedger {
	return m.otp
}

func (m *Manager) Profiles() *Profiles {
	return m.profiles
}

func (m *Manager) Close() error {
	return m.db.Close()
}
