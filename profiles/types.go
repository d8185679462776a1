package profiles

import (
	"context"
)

// ArtistStore persists artist profiles. Lookups that miss return
// ErrArtistProfileNotFound.
type ArtistStore interface {
	// CreateArtist inserts profile unless its user already has one, in
	// which case it returns ErrArtistProfileExists.
	CreateArtist(ctx context.Context, profile *ArtistProfile) (*ArtistProfile, error)
	GetArtistByUser(ctx context.Context, userID string) (*ArtistProfile, error)
	GetArtistView(ctx context.Context, artistID string) (*ArtistView, error)
	// ListArtistViews returns every artist profile, newest first
	ListArtistViews(ctx context.Context) ([]*ArtistView, error)
	UpdateArtist(ctx context.Context, profile *ArtistProfile, columns ...string) (*ArtistProfile, error)
	DeleteArtist(ctx context.Context, userID string) error
}

// CustomerStore persists customer profiles. Lookups that miss return
// ErrCustomerProfileNotFound.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, profile *CustomerProfile) (*CustomerProfile, error)
	GetCustomerByUser(ctx context.Context, userID string) (*CustomerProfile, error)
	GetCustomerView(ctx context.Context, userID string) (*CustomerView, error)
	UpdateCustomer(ctx context.Context, profile *CustomerProfile, columns ...string) (*CustomerProfile, error)
	DeleteCustomer(ctx context.Context, userID string) error
}
