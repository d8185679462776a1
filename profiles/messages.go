package profiles

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const maxDisplayName = 255

// CreateArtistMessage creates the caller's artist profile. UserID may be
// omitted; when present it must be the caller.
type CreateArtistMessage struct {
	UserID         string         `json:"userId"`
	DisplayName    string         `json:"displayName"`
	Bio            string         `json:"bio"`
	Skills         []string       `json:"skills"`
	Categories     []string       `json:"categories"`
	PortfolioLinks []string       `json:"portfolioLinks"`
	SocialLinks    map[string]any `json:"socialLinks"`
}

func (m CreateArtistMessage) Type() string {
	return "profiles.artist.create"
}

func (m CreateArtistMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DisplayName, validation.Length(0, maxDisplayName)),
		validation.Field(&m.PortfolioLinks, validation.Each(is.URL)),
	)
}

// UpdateArtistMessage changes only the fields that are set
type UpdateArtistMessage struct {
	DisplayName    *string         `json:"displayName"`
	Bio            *string         `json:"bio"`
	Skills         *[]string       `json:"skills"`
	Categories     *[]string       `json:"categories"`
	PortfolioLinks *[]string       `json:"portfolioLinks"`
	SocialLinks    *map[string]any `json:"socialLinks"`
}

func (m UpdateArtistMessage) Type() string {
	return "profiles.artist.update"
}

func (m UpdateArtistMessage) Validate() error {
	var links []string
	if m.PortfolioLinks != nil {
		links = *m.PortfolioLinks
	}
	return validation.Errors{
		"displayName":    validation.Validate(m.DisplayName, validation.NilOrNotEmpty, validation.Length(1, maxDisplayName)),
		"portfolioLinks": validation.Validate(links, validation.Each(is.URL)),
	}.Filter()
}

// CreateCustomerMessage creates the caller's customer profile
type CreateCustomerMessage struct {
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Bio         string         `json:"bio"`
	Interests   []string       `json:"interests"`
	Preferences map[string]any `json:"preferences"`
}

func (m CreateCustomerMessage) Type() string {
	return "profiles.customer.create"
}

func (m CreateCustomerMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DisplayName, validation.Length(0, maxDisplayName)),
	)
}

type UpdateCustomerMessage struct {
	DisplayName *string         `json:"displayName"`
	Bio         *string         `json:"bio"`
	Interests   *[]string       `json:"interests"`
	Preferences *map[string]any `json:"preferences"`
}

func (m UpdateCustomerMessage) Type() string {
	return "profiles.customer.update"
}

func (m UpdateCustomerMessage) Validate() error {
	return validation.Errors{
		"displayName": validation.Validate(m.DisplayName, validation.NilOrNotEmpty, validation.Length(1, maxDisplayName)),
	}.Filter()
}
