package profiles

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/zelvyn/zelvyn-api"
)

// Service manages artist and customer profiles. Ownership of the target
// profile is enforced by the transport; create checks that the payload
// user is the caller.
type Service struct {
	artists   ArtistStore
	customers CustomerStore
	users     auth.Users
	logger    auth.Logger
	now       auth.Clock
	timeout   time.Duration
}

func NewService(artists ArtistStore, customers CustomerStore, users auth.Users, logger auth.Logger) *Service {
	return &Service{
		artists:   artists,
		customers: customers,
		users:     users,
		logger:    logger,
		now:       time.Now,
		timeout:   auth.DefaultOperationTimeout,
	}
}

func (s *Service) WithClock(now auth.Clock) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) CreateArtist(ctx context.Context, caller *auth.User, msg CreateArtistMessage) auth.Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (auth.Result, error) {
		userID, err := s.profileOwner(ctx, caller, msg.UserID, msg.DisplayName)
		if err != nil {
			return auth.Result{}, err
		}

		if err := msg.Validate(); err != nil {
			return auth.Result{}, invalid(err)
		}

		now := s.now()
		profile := (&ArtistProfile{
			ArtistID:       uuid.New(),
			UserID:         userID,
			DisplayName:    strings.TrimSpace(msg.DisplayName),
			Bio:            msg.Bio,
			Skills:         msg.Skills,
			Categories:     msg.Categories,
			PortfolioLinks: msg.PortfolioLinks,
			SocialLinks:    msg.SocialLinks,
			CreatedAt:      now,
			UpdatedAt:      now,
		}).Normalize()

		created, err := s.artists.CreateArtist(ctx, profile)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusCreated, created, "Artist profile created successfully"), nil
	})
}

func (s *Service) GetArtist(ctx context.Context, artistID string) auth.Result {
	return s.handle(ctx, "profiles.artist.get", func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(artistID) == "" {
			return auth.Result{}, ErrArtistIDRequired
		}

		view, err := s.artists.GetArtistView(ctx, artistID)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusOK, view, "Artist profile retrieved successfully"), nil
	})
}

func (s *Service) ListArtists(ctx context.Context) auth.Result {
	return s.handle(ctx, "profiles.artist.list", func(ctx context.Context) (auth.Result, error) {
		views, err := s.artists.ListArtistViews(ctx)
		if err != nil {
			return auth.Result{}, err
		}
		if views == nil {
			views = []*ArtistView{}
		}
		return auth.Succeed(http.StatusOK, views, "Artist profiles retrieved successfully"), nil
	})
}

func (s *Service) UpdateArtist(ctx context.Context, userID string, msg UpdateArtistMessage) auth.Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(userID) == "" {
			return auth.Result{}, ErrUserIDRequired
		}

		if err := msg.Validate(); err != nil {
			return auth.Result{}, invalid(err)
		}

		profile, err := s.artists.GetArtistByUser(ctx, userID)
		if err != nil {
			return auth.Result{}, err
		}

		columns := []string{"updated_at"}
		if msg.DisplayName != nil {
			profile.DisplayName = strings.TrimSpace(*msg.DisplayName)
			columns = append(columns, "display_name")
		}
		if msg.Bio != nil {
			profile.Bio = *msg.Bio
			columns = append(columns, "bio")
		}
		if msg.Skills != nil {
			profile.Skills = *msg.Skills
			columns = append(columns, "skills")
		}
		if msg.Categories != nil {
			profile.Categories = *msg.Categories
			columns = append(columns, "categories")
		}
		if msg.PortfolioLinks != nil {
			profile.PortfolioLinks = *msg.PortfolioLinks
			columns = append(columns, "portfolio_links")
		}
		if msg.SocialLinks != nil {
			profile.SocialLinks = *msg.SocialLinks
			columns = append(columns, "social_links")
		}
		profile.UpdatedAt = s.now()

		updated, err := s.artists.UpdateArtist(ctx, profile.Normalize(), columns...)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusOK, updated, "Artist profile updated successfully"), nil
	})
}

func (s *Service) DeleteArtist(ctx context.Context, userID string) auth.Result {
	return s.handle(ctx, "profiles.artist.delete", func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(userID) == "" {
			return auth.Result{}, ErrUserIDRequired
		}
		if err := s.artists.DeleteArtist(ctx, userID); err != nil {
			return auth.Result{}, err
		}
		return auth.Succeed(http.StatusOK, nil, "Artist profile deleted successfully"), nil
	})
}

func (s *Service) CreateCustomer(ctx context.Context, caller *auth.User, msg CreateCustomerMessage) auth.Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (auth.Result, error) {
		userID, err := s.profileOwner(ctx, caller, msg.UserID, msg.DisplayName)
		if err != nil {
			return auth.Result{}, err
		}

		if err := msg.Validate(); err != nil {
			return auth.Result{}, invalid(err)
		}

		now := s.now()
		profile := (&CustomerProfile{
			CustomerID:  uuid.New(),
			UserID:      userID,
			DisplayName: strings.TrimSpace(msg.DisplayName),
			Bio:         msg.Bio,
			Interests:   msg.Interests,
			Preferences: msg.Preferences,
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Normalize()

		created, err := s.customers.CreateCustomer(ctx, profile)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusCreated, created, "Customer profile created successfully"), nil
	})
}

func (s *Service) GetCustomer(ctx context.Context, userID string) auth.Result {
	return s.handle(ctx, "profiles.customer.get", func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(userID) == "" {
			return auth.Result{}, ErrUserIDRequired
		}

		view, err := s.customers.GetCustomerView(ctx, userID)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusOK, view, "Customer profile retrieved successfully"), nil
	})
}

func (s *Service) UpdateCustomer(ctx context.Context, userID string, msg UpdateCustomerMessage) auth.Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(userID) == "" {
			return auth.Result{}, ErrUserIDRequired
		}

		if err := msg.Validate(); err != nil {
			return auth.Result{}, invalid(err)
		}

		profile, err := s.customers.GetCustomerByUser(ctx, userID)
		if err != nil {
			return auth.Result{}, err
		}

		columns := []string{"updated_at"}
		if msg.DisplayName != nil {
			profile.DisplayName = strings.TrimSpace(*msg.DisplayName)
			columns = append(columns, "display_name")
		}
		if msg.Bio != nil {
			profile.Bio = *msg.Bio
			columns = append(columns, "bio")
		}
		if msg.Interests != nil {
			profile.Interests = *msg.Interests
			columns = append(columns, "interests")
		}
		if msg.Preferences != nil {
			profile.Preferences = *msg.Preferences
			columns = append(columns, "preferences")
		}
		profile.UpdatedAt = s.now()

		updated, err := s.customers.UpdateCustomer(ctx, profile.Normalize(), columns...)
		if err != nil {
			return auth.Result{}, err
		}

		return auth.Succeed(http.StatusOK, updated, "Customer profile updated successfully"), nil
	})
}

func (s *Service) DeleteCustomer(ctx context.Context, userID string) auth.Result {
	return s.handle(ctx, "profiles.customer.delete", func(ctx context.Context) (auth.Result, error) {
		if strings.TrimSpace(userID) == "" {
			return auth.Result{}, ErrUserIDRequired
		}
		if err := s.customers.DeleteCustomer(ctx, userID); err != nil {
			return auth.Result{}, err
		}
		return auth.Succeed(http.StatusOK, nil, "Customer profile deleted successfully"), nil
	})
}

// profileOwner resolves whose profile is being created. The payload user
// defaults to the caller and may not name anyone else.
func (s *Service) profileOwner(ctx context.Context, caller *auth.User, payloadUserID, displayName string) (uuid.UUID, error) {
	if caller == nil {
		return uuid.Nil, auth.ErrAuthorization
	}

	userID := strings.TrimSpace(payloadUserID)
	if userID == "" {
		userID = caller.ID.String()
	}

	if err := auth.MissingFields(auth.F("displayName", displayName)); err != nil {
		return uuid.Nil, err
	}

	if err := auth.AuthorizeOwner(caller, userID); err != nil {
		return uuid.Nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return uuid.Nil, auth.ErrUserNotFound
		}
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	return user.ID, nil
}

func (s *Service) handle(ctx context.Context, op string, fn func(ctx context.Context) (auth.Result, error)) auth.Result {
	if err := ctx.Err(); err != nil {
		return auth.ResultFromError(goerrors.Wrap(err, goerrors.CategoryOperation, "context cancelled during "+op))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := fn(ctx)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Code > 0 && richErr.Code < http.StatusInternalServerError {
			s.logger.Debug("profile operation rejected", "op", op, "error", err)
		} else {
			s.logger.Error("profile operation failed", "op", op, "error", err)
		}
		return auth.ResultFromError(err)
	}
	return res
}

func invalid(err error) error {
	return goerrors.FromOzzoValidation(err, "Invalid profile details.").WithCode(goerrors.CodeBadRequest)
}
