package profiles_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zelvyn/zelvyn-api"
	"github.com/zelvyn/zelvyn-api/profiles"
	"github.com/zelvyn/zelvyn-api/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc   *profiles.Service
	users *repository.Users
	store *repository.Profiles
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := repository.Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(ctx, db, dialect))
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		users: repository.NewUsersRepository(db),
		store: repository.NewProfilesRepository(db),
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = profiles.NewService(f.store, f.store, f.users, discardLogger()).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) register(t *testing.T, email, username string, role auth.UserRole) *auth.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), (&auth.User{
		ID:       uuid.New(),
		Name:     "Ann",
		Email:    email,
		Username: username,
		Role:     role,
		IsActive: true,
		Provider: auth.ProviderLocal,
	}).Touch(f.now))
	require.NoError(t, err)
	return user
}

func TestService_CreateArtist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "a@x.com", "ann", auth.RoleArtist)

	res := f.svc.CreateArtist(ctx, ann, profiles.CreateArtistMessage{
		DisplayName:    "  Ann Art  ",
		Skills:         []string{"ink"},
		PortfolioLinks: []string{"https://ann.example.com"},
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Data.Message)
	assert.True(t, res.Data.Success)
	assert.Equal(t, "Artist profile created successfully", res.Data.Message)

	created, ok := res.Data.Data.(*profiles.ArtistProfile)
	require.True(t, ok)
	assert.Equal(t, ann.ID, created.UserID)
	assert.Equal(t, "Ann Art", created.DisplayName)
	assert.Equal(t, []string{}, created.Categories)
	assert.Equal(t, f.now, created.CreatedAt)

	res = f.svc.CreateArtist(ctx, ann, profiles.CreateArtistMessage{DisplayName: "Again"})
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, "Artist profile already exists for this user.", res.Data.Message)
}

func TestService_CreateArtistRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "a@x.com", "ann", auth.RoleArtist)
	bea := f.register(t, "b@x.com", "bea", auth.RoleArtist)

	tests := []struct {
		name    string
		caller  *auth.User
		msg     profiles.CreateArtistMessage
		status  int
		message string
	}{
		{
			name:    "no caller",
			caller:  nil,
			msg:     profiles.CreateArtistMessage{DisplayName: "Ann"},
			status:  http.StatusInternalServerError,
			message: "Authorization error",
		},
		{
			name:    "missing display name",
			caller:  ann,
			msg:     profiles.CreateArtistMessage{DisplayName: "  "},
			status:  http.StatusBadRequest,
			message: "Missing required fields: displayName",
		},
		{
			name:    "someone else's user id",
			caller:  ann,
			msg:     profiles.CreateArtistMessage{UserID: bea.ID.String(), DisplayName: "Bea"},
			status:  http.StatusForbidden,
			message: "Access denied. You can only access your own profile",
		},
		{
			name:    "bad portfolio link",
			caller:  ann,
			msg:     profiles.CreateArtistMessage{DisplayName: "Ann", PortfolioLinks: []string{"not a url"}},
			status:  http.StatusBadRequest,
			message: "Invalid profile details.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.CreateArtist(ctx, tt.caller, tt.msg)
			assert.Equal(t, tt.status, res.Status)
			assert.False(t, res.Data.Success)
			assert.Equal(t, tt.message, res.Data.Message)
		})
	}
}

func TestService_CreateArtistForDeletedUser(t *testing.T) {
	f := newFixture(t)
	ghost := &auth.User{ID: uuid.New(), Email: "ghost@x.com", Role: auth.RoleArtist}

	res := f.svc.CreateArtist(context.Background(), ghost, profiles.CreateArtistMessage{DisplayName: "Ghost"})
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "User not found.", res.Data.Message)
}

func TestService_ArtistReadUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "a@x.com", "ann", auth.RoleArtist)

	res := f.svc.CreateArtist(ctx, ann, profiles.CreateArtistMessage{DisplayName: "Ann Art", Bio: "ink"})
	require.Equal(t, http.StatusCreated, res.Status, res.Data.Message)
	created := res.Data.Data.(*profiles.ArtistProfile)

	res = f.svc.GetArtist(ctx, created.ArtistID.String())
	require.Equal(t, http.StatusOK, res.Status)
	view := res.Data.Data.(*profiles.ArtistView)
	assert.Equal(t, "Ann", view.Name)
	assert.Equal(t, "ink", view.Bio)

	res = f.svc.GetArtist(ctx, "")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Artist ID is required.", res.Data.Message)

	res = f.svc.GetArtist(ctx, uuid.NewString())
	assert.Equal(t, http.StatusNotFound, res.Status)

	f.now = f.now.Add(time.Hour)
	bio := "oil and ink"
	categories := []string{"portrait"}
	res = f.svc.UpdateArtist(ctx, ann.ID.String(), profiles.UpdateArtistMessage{Bio: &bio, Categories: &categories})
	require.Equal(t, http.StatusOK, res.Status, res.Data.Message)
	updated := res.Data.Data.(*profiles.ArtistProfile)
	assert.Equal(t, "Ann Art", updated.DisplayName)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, f.now, updated.UpdatedAt)

	empty := ""
	res = f.svc.UpdateArtist(ctx, ann.ID.String(), profiles.UpdateArtistMessage{DisplayName: &empty})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	stored, err := f.store.GetArtistByUser(ctx, ann.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"portrait"}, stored.Categories)
	assert.Equal(t, "Ann Art", stored.DisplayName)

	res = f.svc.ListArtists(ctx)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.Data.Data, 1)

	res = f.svc.DeleteArtist(ctx, ann.ID.String())
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Artist profile deleted successfully", res.Data.Message)

	res = f.svc.DeleteArtist(ctx, ann.ID.String())
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Artist profile not found.", res.Data.Message)

	res = f.svc.UpdateArtist(ctx, ann.ID.String(), profiles.UpdateArtistMessage{Bio: &bio})
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestService_CustomerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cara := f.register(t, "c@x.com", "cara", auth.RoleCustomer)
	id := cara.ID.String()

	res := f.svc.GetCustomer(ctx, id)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Customer profile not found.", res.Data.Message)

	res = f.svc.CreateCustomer(ctx, cara, profiles.CreateCustomerMessage{
		UserID:      id,
		DisplayName: "Cara",
		Interests:   []string{"murals"},
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Data.Message)
	assert.Equal(t, "Customer profile created successfully", res.Data.Message)

	res = f.svc.CreateCustomer(ctx, cara, profiles.CreateCustomerMessage{DisplayName: "Cara"})
	assert.Equal(t, http.StatusConflict, res.Status)

	res = f.svc.GetCustomer(ctx, id)
	require.Equal(t, http.StatusOK, res.Status)
	view := res.Data.Data.(*profiles.CustomerView)
	assert.Equal(t, "c@x.com", view.Email)
	assert.Equal(t, []string{"murals"}, view.Interests)

	prefs := map[string]any{"budget": "low"}
	res = f.svc.UpdateCustomer(ctx, id, profiles.UpdateCustomerMessage{Preferences: &prefs})
	require.Equal(t, http.StatusOK, res.Status, res.Data.Message)
	assert.Equal(t, "Customer profile updated successfully", res.Data.Message)

	res = f.svc.DeleteCustomer(ctx, id)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Customer profile deleted successfully", res.Data.Message)

	res = f.svc.DeleteCustomer(ctx, "")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "User ID is required.", res.Data.Message)
}

func TestService_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.svc.ListArtists(ctx)
	assert.False(t, res.Data.Success)
	assert.NotEqual(t, http.StatusOK, res.Status)
}

func TestMessages_Validate(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	assert.Error(t, profiles.CreateArtistMessage{DisplayName: string(long)}.Validate())
	assert.NoError(t, profiles.CreateArtistMessage{DisplayName: "Ann"}.Validate())
	assert.NoError(t, profiles.UpdateArtistMessage{}.Validate())

	links := []string{"https://ok.example.com", "nope"}
	assert.Error(t, profiles.UpdateArtistMessage{PortfolioLinks: &links}.Validate())
	assert.Error(t, profiles.CreateCustomerMessage{DisplayName: string(long)}.Validate())

	name := "Cara"
	assert.NoError(t, profiles.UpdateCustomerMessage{DisplayName: &name}.Validate())
}
