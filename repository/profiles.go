package repository

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/zelvyn/zelvyn-api/profiles"
)

const artistViewColumns = `ap.artist_id, ap.user_id, ap.display_name, ap.bio, ap.skills,
	ap.categories, ap.portfolio_links, ap.social_links, ap.created_at, ap.updated_at,
	u.name, u.profile_image, u.created_at AS user_created_at`

const customerViewColumns = `cp.customer_id, cp.user_id, cp.display_name, cp.bio,
	cp.interests, cp.preferences, cp.created_at, cp.updated_at,
	u.name, u.email, u.profile_image, u.created_at AS user_created_at`

// Profiles stores artist and customer profiles
type Profiles struct {
	artists   repository.Repository[*profiles.ArtistProfile]
	customers repository.Repository[*profiles.CustomerProfile]
	db        *bun.DB
}

var (
	_ profiles.ArtistStore   = (*Profiles)(nil)
	_ profiles.CustomerStore = (*Profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) *Profiles {
	artists := repository.NewRepository[*profiles.ArtistProfile](db, repository.ModelHandlers[*profiles.ArtistProfile]{
		NewRecord: func() *profiles.ArtistProfile { return &profiles.ArtistProfile{} },
		GetID: func(p *profiles.ArtistProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ArtistID
		},
		SetID: func(p *profiles.ArtistProfile, id uuid.UUID) {
			if p != nil {
				p.ArtistID = id
			}
		},
		GetIdentifier: func() string {
			return "user_id"
		},
	})

	customers := repository.NewRepository[*profiles.CustomerProfile](db, repository.ModelHandlers[*profiles.CustomerProfile]{
		NewRecord: func() *profiles.CustomerProfile { return &profiles.CustomerProfile{} },
		GetID: func(p *profiles.CustomerProfile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.CustomerID
		},
		SetID: func(p *profiles.CustomerProfile, id uuid.UUID) {
			if p != nil {
				p.CustomerID = id
			}
		},
		GetIdentifier: func() string {
			return "user_id"
		},
	})

	return &Profiles{artists: artists, customers: customers, db: db}
}

// CreateArtist inserts profile in one statement. The unique user_id makes
// a concurrent second insert a no op, reported as ErrArtistProfileExists.
func (p *Profiles) CreateArtist(ctx context.Context, profile *profiles.ArtistProfile) (*profiles.ArtistProfile, error) {
	created, err := insertOnce(ctx, p.db, profile.Normalize())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert artist profile")
	}
	if !created {
		return nil, profiles.ErrArtistProfileExists
	}
	return profile, nil
}

func (p *Profiles) GetArtistByUser(ctx context.Context, userID string) (*profiles.ArtistProfile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, profiles.ErrArtistProfileNotFound
	}

	record, err := p.artists.Get(ctx, repository.SelectBy("user_id", "=", userID))
	if err != nil {
		return nil, lookupError(err, profiles.ErrArtistProfileNotFound, "failed to load artist profile")
	}
	return record, nil
}

func (p *Profiles) GetArtistView(ctx context.Context, artistID string) (*profiles.ArtistView, error) {
	if _, err := uuid.Parse(artistID); err != nil {
		return nil, profiles.ErrArtistProfileNotFound
	}

	view := &profiles.ArtistView{}
	err := p.db.NewSelect().
		TableExpr("artist_profiles AS ap").
		Join("JOIN users AS u ON u.id = ap.user_id").
		ColumnExpr(artistViewColumns).
		Where("ap.artist_id = ?", artistID).
		Limit(1).
		Scan(ctx, view)
	if err != nil {
		return nil, lookupError(err, profiles.ErrArtistProfileNotFound, "failed to load artist profile")
	}
	return view, nil
}

func (p *Profiles) ListArtistViews(ctx context.Context) ([]*profiles.ArtistView, error) {
	views := []*profiles.ArtistView{}
	err := p.db.NewSelect().
		TableExpr("artist_profiles AS ap").
		Join("JOIN users AS u ON u.id = ap.user_id").
		ColumnExpr(artistViewColumns).
		OrderExpr("ap.created_at DESC").
		Scan(ctx, &views)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list artist profiles")
	}
	return views, nil
}

func (p *Profiles) UpdateArtist(ctx context.Context, profile *profiles.ArtistProfile, columns ...string) (*profiles.ArtistProfile, error) {
	if err := updateColumns(ctx, p.db, profile, profiles.ErrArtistProfileNotFound, columns...); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *Profiles) DeleteArtist(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return profiles.ErrArtistProfileNotFound
	}
	return deleteByUser(ctx, p.db, (*profiles.ArtistProfile)(nil), userID, profiles.ErrArtistProfileNotFound)
}

func (p *Profiles) CreateCustomer(ctx context.Context, profile *profiles.CustomerProfile) (*profiles.CustomerProfile, error) {
	created, err := insertOnce(ctx, p.db, profile.Normalize())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert customer profile")
	}
	if !created {
		return nil, profiles.ErrCustomerProfileExists
	}
	return profile, nil
}

func (p *Profiles) GetCustomerByUser(ctx context.Context, userID string) (*profiles.CustomerProfile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, profiles.ErrCustomerProfileNotFound
	}

	record, err := p.customers.Get(ctx, repository.SelectBy("user_id", "=", userID))
	if err != nil {
		return nil, lookupError(err, profiles.ErrCustomerProfileNotFound, "failed to load customer profile")
	}
	return record, nil
}

func (p *Profiles) GetCustomerView(ctx context.Context, userID string) (*profiles.CustomerView, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, profiles.ErrCustomerProfileNotFound
	}

	view := &profiles.CustomerView{}
	err := p.db.NewSelect().
		TableExpr("customer_profiles AS cp").
		Join("JOIN users AS u ON u.id = cp.user_id").
		ColumnExpr(customerViewColumns).
		Where("cp.user_id = ?", userID).
		Limit(1).
		Scan(ctx, view)
	if err != nil {
		return nil, lookupError(err, profiles.ErrCustomerProfileNotFound, "failed to load customer profile")
	}
	return view, nil
}

func (p *Profiles) UpdateCustomer(ctx context.Context, profile *profiles.CustomerProfile, columns ...string) (*profiles.CustomerProfile, error) {
	if err := updateColumns(ctx, p.db, profile, profiles.ErrCustomerProfileNotFound, columns...); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *Profiles) DeleteCustomer(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return profiles.ErrCustomerProfileNotFound
	}
	return deleteByUser(ctx, p.db, (*profiles.CustomerProfile)(nil), userID, profiles.ErrCustomerProfileNotFound)
}

func insertOnce(ctx context.Context, db bun.IDB, model any) (bool, error) {
	res, err := db.NewInsert().
		Model(model).
		On("CONFLICT DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func updateColumns(ctx context.Context, db bun.IDB, model any, notFound error, columns ...string) error {
	q := db.NewUpdate().Model(model).WherePK()
	if len(columns) > 0 {
		q = q.Column(columns...)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func deleteByUser(ctx context.Context, db bun.IDB, model any, userID string, notFound error) error {
	res, err := db.NewDelete().
		Model(model).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete profile")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func lookupError(err error, notFound error, message string) error {
	if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}
