package profiles

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ArtistProfile is the public facing profile of an ARTIST account. A user
// has at most one.
type ArtistProfile struct {
	bun.BaseModel  `bun:"table:artist_profiles,alias:ap"`
	ArtistID       uuid.UUID      `bun:"artist_id,pk,type:uuid" json:"artistId"`
	UserID         uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"userId"`
	DisplayName    string         `bun:"display_name,notnull" json:"displayName"`
	Bio            string         `bun:"bio,nullzero" json:"bio"`
	Skills         []string       `bun:"skills,type:jsonb,notnull" json:"skills"`
	Categories     []string       `bun:"categories,type:jsonb,notnull" json:"categories"`
	PortfolioLinks []string       `bun:"portfolio_links,type:jsonb,notnull" json:"portfolioLinks"`
	SocialLinks    map[string]any `bun:"social_links,type:jsonb,notnull" json:"socialLinks"`
	CreatedAt      time.Time      `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time      `bun:"updated_at,notnull" json:"updatedAt"`
}

// Normalize replaces nil collections with empty ones so they are stored as
// [] and {} instead of NULL.
func (p *ArtistProfile) Normalize() *ArtistProfile {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.PortfolioLinks == nil {
		p.PortfolioLinks = []string{}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = map[string]any{}
	}
	return p
}

// ArtistView is an artist profile joined with its owner account
type ArtistView struct {
	ArtistID       uuid.UUID      `bun:"artist_id" json:"artistId"`
	UserID         uuid.UUID      `bun:"user_id" json:"userId"`
	DisplayName    string         `bun:"display_name" json:"displayName"`
	Bio            string         `bun:"bio" json:"bio"`
	Skills         []string       `bun:"skills,type:jsonb" json:"skills"`
	Categories     []string       `bun:"categories,type:jsonb" json:"categories"`
	PortfolioLinks []string       `bun:"portfolio_links,type:jsonb" json:"portfolioLinks"`
	SocialLinks    map[string]any `bun:"social_links,type:jsonb" json:"socialLinks"`
	Name           string         `bun:"name" json:"name"`
	ProfileImage   string         `bun:"profile_image" json:"profileImage"`
	CreatedAt      time.Time      `bun:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `bun:"updated_at" json:"updatedAt"`
	UserCreatedAt  time.Time      `bun:"user_created_at" json:"userCreatedAt"`
}

// CustomerProfile holds what a CUSTOMER shares with artists
type CustomerProfile struct {
	bun.BaseModel `bun:"table:customer_profiles,alias:cp"`
	CustomerID    uuid.UUID      `bun:"customer_id,pk,type:uuid" json:"customerId"`
	UserID        uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"userId"`
	DisplayName   string         `bun:"display_name,notnull" json:"displayName"`
	Bio           string         `bun:"bio,nullzero" json:"bio"`
	Interests     []string       `bun:"interests,type:jsonb,notnull" json:"interests"`
	Preferences   map[string]any `bun:"preferences,type:jsonb,notnull" json:"preferences"`
	CreatedAt     time.Time      `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull" json:"updatedAt"`
}

func (p *CustomerProfile) Normalize() *CustomerProfile {
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}
	return p
}

// CustomerView is a customer profile joined with its owner account
type CustomerView struct {
	CustomerID    uuid.UUID      `bun:"customer_id" json:"customerId"`
	UserID        uuid.UUID      `bun:"user_id" json:"userId"`
	DisplayName   string         `bun:"display_name" json:"displayName"`
	Bio           string         `bun:"bio" json:"bio"`
	Interests     []string       `bun:"interests,type:jsonb" json:"interests"`
	Preferences   map[string]any `bun:"preferences,type:jsonb" json:"preferences"`
	Name          string         `bun:"name" json:"name"`
	Email         string         `bun:"email" json:"email"`
	ProfileImage  string         `bun:"profile_image" json:"profileImage"`
	CreatedAt     time.Time      `bun:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `bun:"updated_at" json:"updatedAt"`
	UserCreatedAt time.Time      `bun:"user_created_at" json:"userCreatedAt"`
}
