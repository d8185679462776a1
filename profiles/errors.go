package profiles

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeProfileExists   = "PROFILE_EXISTS"
	TextCodeProfileNotFound = "PROFILE_NOT_FOUND"
)

var (
	ErrArtistProfileExists = goerrors.New("Artist profile already exists for this user.", goerrors.CategoryConflict).
				WithCode(goerrors.CodeConflict).
				WithTextCode(TextCodeProfileExists)

	ErrCustomerProfileExists = goerrors.New("Customer profile already exists for this user.", goerrors.CategoryConflict).
					WithCode(goerrors.CodeConflict).
					WithTextCode(TextCodeProfileExists)

	ErrArtistProfileNotFound = goerrors.New("Artist profile not found.", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound).
					WithTextCode(TextCodeProfileNotFound)

	ErrCustomerProfileNotFound = goerrors.New("Customer profile not found.", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound).
					WithTextCode(TextCodeProfileNotFound)

	ErrArtistIDRequired = goerrors.New("Artist ID is required.", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)

	ErrUserIDRequired = goerrors.New("User ID is required.", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
)
