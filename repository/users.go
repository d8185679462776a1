package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/zelvyn/zelvyn-api"
)

var ResetUserPasswordSQL = `UPDATE "users"
SET
	"password_hash" = ?,
	"updated_at" = ?
WHERE
	"id" = ?
RETURNING "id";`

// Users is the bun backed credential store
type Users struct {
	repository.Repository[*auth.User]
	db  *bun.DB
	now auth.Clock
}

var _ auth.Users = (*Users)(nil)

func NewUsersRepository(db *bun.DB) *Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	record, err := u.Repository.Get(ctx, repository.SelectBy("email", "=", strings.TrimSpace(email)))
	if err != nil {
		return nil, userLookupError(err, "email", email)
	}
	return record, nil
}

func (u *Users) GetByID(ctx context.Context, id string) (*auth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, auth.ErrUserNotFound
	}

	record, err := u.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, "id", id)
	}
	return record, nil
}

// Register inserts user in one statement. A unique violation on email or
// username inserts nothing and is reported as auth.ErrUserExists.
func (u *Users) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return u.RegisterTx(ctx, u.db, user)
}

func (u *Users) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Touch(u.now())

	res, err := tx.NewInsert().
		Model(user).
		On("CONFLICT DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, auth.ErrUserExists
	}

	return user, nil
}

// Update writes the given columns, or the whole record when none are named
func (u *Users) Update(ctx context.Context, user *auth.User, columns ...string) (*auth.User, error) {
	if len(columns) == 0 {
		updated, err := u.Repository.UpdateTx(ctx, u.db, user, repository.UpdateByID(user.ID.String()))
		if err != nil {
			return nil, userLookupError(err, "id", user.ID.String())
		}
		return updated, nil
	}

	res, err := u.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) TrackLogin(ctx context.Context, id string, at time.Time) error {
	res, err := u.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("last_login_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login")
	}
	return requireRow(res)
}

func (u *Users) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return u.ResetPasswordTx(ctx, u.db, id, passwordHash)
}

func (u *Users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id, passwordHash string) error {
	if _, err := uuid.Parse(id); err != nil {
		return auth.ErrUserNotFound
	}

	var ids []string
	if err := tx.NewRaw(ResetUserPasswordSQL, passwordHash, u.now(), id).Scan(ctx, &ids); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	if len(ids) == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

func (u *Users) MarkEmailVerified(ctx context.Context, id string) error {
	res, err := u.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("is_email_verified = ?", true).
		Set("updated_at = ?", u.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
	}
	return requireRow(res)
}

func (u *Users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	exists, err := u.db.NewSelect().
		Model((*auth.User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username")
	}
	return exists, nil
}

func userLookupError(err error, column, value string) error {
	if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return auth.ErrUserNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user").
		WithMetadata(map[string]any{column: value})
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
