package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zelvyn/zelvyn-api/profiles"
)

func newArtist(userID uuid.UUID, name string, at time.Time) *profiles.ArtistProfile {
	return &profiles.ArtistProfile{
		ArtistID:    uuid.New(),
		UserID:      userID,
		DisplayName: name,
		Skills:      []string{"ink", "oil"},
		SocialLinks: map[string]any{"instagram": "@ann"},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestProfiles_ArtistLifecycle(t *testing.T) {
	m, c := setupManager(t)
	ctx := context.Background()
	store := m.Profiles()

	user, err := m.Users().Register(ctx, newUser("a@x.com", "ann"))
	require.NoError(t, err)
	userID := user.ID.String()

	created, err := store.CreateArtist(ctx, newArtist(user.ID, "Ann Art", c.Now()))
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.Categories)
	assert.Equal(t, []string{}, created.PortfolioLinks)

	_, err = store.CreateArtist(ctx, newArtist(user.ID, "Again", c.Now()))
	assert.ErrorIs(t, err, profiles.ErrArtistProfileExists)

	byUser, err := store.GetArtistByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ArtistID, byUser.ArtistID)
	assert.Equal(t, []string{"ink", "oil"}, byUser.Skills)
	assert.Equal(t, "@ann", byUser.SocialLinks["instagram"])

	view, err := store.GetArtistView(ctx, created.ArtistID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ann Art", view.DisplayName)
	assert.Equal(t, "Ann", view.Name)
	assert.Equal(t, user.ID, view.UserID)
	assert.Equal(t, []string{"ink", "oil"}, view.Skills)

	byUser.Bio = "painter"
	byUser.Categories = []string{"portrait"}
	_, err = store.UpdateArtist(ctx, byUser, "bio", "categories")
	require.NoError(t, err)

	updated, err := store.GetArtistByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "painter", updated.Bio)
	assert.Equal(t, []string{"portrait"}, updated.Categories)

	require.NoError(t, store.DeleteArtist(ctx, userID))
	assert.ErrorIs(t, store.DeleteArtist(ctx, userID), profiles.ErrArtistProfileNotFound)

	_, err = store.GetArtistByUser(ctx, userID)
	assert.ErrorIs(t, err, profiles.ErrArtistProfileNotFound)
	_, err = store.GetArtistView(ctx, created.ArtistID.String())
	assert.ErrorIs(t, err, profiles.ErrArtistProfileNotFound)
	_, err = store.GetArtistView(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, profiles.ErrArtistProfileNotFound)
}

func TestProfiles_LookupByUserPicksOwnRow(t *testing.T) {
	m, c := setupManager(t)
	ctx := context.Background()
	store := m.Profiles()

	ann, err := m.Users().Register(ctx, newUser("a@x.com", "ann"))
	require.NoError(t, err)
	bea, err := m.Users().Register(ctx, newUser("b@x.com", "bea"))
	require.NoError(t, err)

	_, err = store.CreateArtist(ctx, newArtist(ann.ID, "Ann Art", c.Now()))
	require.NoError(t, err)
	beaArtist, err := store.CreateArtist(ctx, newArtist(bea.ID, "Bea Art", c.Now()))
	require.NoError(t, err)

	got, err := store.GetArtistByUser(ctx, bea.ID.String())
	require.NoError(t, err)
	assert.Equal(t, beaArtist.ArtistID, got.ArtistID)
	assert.Equal(t, "Bea Art", got.DisplayName)

	_, err = store.GetArtistByUser(ctx, beaArtist.ArtistID.String())
	assert.ErrorIs(t, err, profiles.ErrArtistProfileNotFound)

	_, err = store.GetCustomerByUser(ctx, ann.ID.String())
	assert.ErrorIs(t, err, profiles.ErrCustomerProfileNotFound)
}

func TestProfiles_ListArtistsNewestFirst(t *testing.T) {
	m, c := setupManager(t)
	ctx := context.Background()
	store := m.Profiles()

	views, err := store.ListArtistViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)

	first, err := m.Users().Register(ctx, newUser("a@x.com", "ann"))
	require.NoError(t, err)
	second, err := m.Users().Register(ctx, newUser("b@x.com", "bea"))
	require.NoError(t, err)

	_, err = store.CreateArtist(ctx, newArtist(first.ID, "First", c.Now()))
	require.NoError(t, err)
	c.Advance(time.Minute)
	_, err = store.CreateArtist(ctx, newArtist(second.ID, "Second", c.Now()))
	require.NoError(t, err)

	views, err = store.ListArtistViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Second", views[0].DisplayName)
	assert.Equal(t, "First", views[1].DisplayName)
}

func TestProfiles_ConcurrentCreateSucceedsOnce(t *testing.T) {
	m, c := setupManager(t)
	ctx := context.Background()
	store := m.Profiles()

	user, err := m.Users().Register(ctx, newUser("a@x.com", "ann"))
	require.NoError(t, err)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateCustomer(ctx, &profiles.CustomerProfile{
				CustomerID:  uuid.New(),
				UserID:      user.ID,
				DisplayName: "Ann",
				CreatedAt:   c.Now(),
				UpdatedAt:   c.Now(),
			})
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, profiles.ErrCustomerProfileExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(7), conflicts.Load())
}

func TestProfiles_CustomerLifecycle(t *testing.T) {
	m, c := setupManager(t)
	ctx := context.Background()
	store := m.Profiles()

	user, err := m.Users().Register(ctx, newUser("a@x.com", "ann"))
	require.NoError(t, err)
	userID := user.ID.String()

	_, err = store.GetCustomerView(ctx, userID)
	assert.ErrorIs(t, err, profiles.ErrCustomerProfileNotFound)

	created, err := store.CreateCustomer(ctx, &profiles.CustomerProfile{
		CustomerID:  uuid.New(),
		UserID:      user.ID,
		DisplayName: "Ann",
		Interests:   []string{"murals"},
		CreatedAt:   c.Now(),
		UpdatedAt:   c.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, created.Preferences)

	view, err := store.GetCustomerView(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.CustomerID, view.CustomerID)
	assert.Equal(t, "a@x.com", view.Email)
	assert.Equal(t, []string{"murals"}, view.Interests)

	profile, err := store.GetCustomerByUser(ctx, userID)
	require.NoError(t, err)
	profile.Preferences = map[string]any{"budget": "low"}
	_, err = store.UpdateCustomer(ctx, profile, "preferences")
	require.NoError(t, err)

	view, err = store.GetCustomerView(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "low", view.Preferences["budget"])

	require.NoError(t, store.DeleteCustomer(ctx, userID))
	assert.ErrorIs(t, store.DeleteCustomer(ctx, userID), profiles.ErrCustomerProfileNotFound)
	assert.ErrorIs(t, store.DeleteCustomer(ctx, "bad-id"), profiles.ErrCustomerProfileNotFound)
}
