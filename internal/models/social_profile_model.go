package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	PlatformGoogle   = "google"
	PlatformFacebook = "facebook"
)

type SocialProfile struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	UserID         uuid.UUID   `db:"user_id" json:"userId"`
	Platform       string      `db:"platform" json:"platform"`
	PlatformUserID string      `db:"platform_user_id" json:"platformUserId"`
	AccessToken    string      `db:"access_token" json:"-"`
	RefreshToken   string      `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time  `db:"token_expires_at" json:"tokenExpiresAt"`
	ProfileData    ProfileData `db:"profile_data" json:"profileData"`
	IsActive       bool        `db:"is_active" json:"isActive"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// Tokens returns the credential part of the profile.
func (p *SocialProfile) Tokens() TokenSet {
	return TokenSet{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.TokenExpiresAt,
	}
}

// SetTokens overwrites the credential part of the profile.
func (p *SocialProfile) SetTokens(t TokenSet) {
	p.AccessToken = t.AccessToken
	p.RefreshToken = t.RefreshToken
	p.TokenExpiresAt = t.ExpiresAt
}

type ProfileValue struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type PageRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ProfileData is the provider profile captured at connect time, stored as jsonb.
type ProfileData struct {
	ID                string         `json:"id,omitempty"`
	Provider          string         `json:"provider,omitempty"`
	DisplayName       string         `json:"displayName,omitempty"`
	Emails            []ProfileValue `json:"emails,omitempty"`
	Photos            []ProfileValue `json:"photos,omitempty"`
	IsBusinessProfile bool           `json:"isBusinessProfile,omitempty"`
	Pages             []PageRef      `json:"pages,omitempty"`
}

// PrimaryEmail is the first non-empty email, or "".
func (d ProfileData) PrimaryEmail() string {
	for _, e := range d.Emails {
		if e.Value != "" {
			return e.Value
		}
	}
	return ""
}

func (d ProfileData) PrimaryPhoto() string {
	for _, p := range d.Photos {
		if p.Value != "" {
			return p.Value
		}
	}
	return ""
}

func (d ProfileData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *ProfileData) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*d = ProfileData{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("profile_data: unsupported type %T", src)
	}
	if len(b) == 0 {
		*d = ProfileData{}
		return nil
	}
	var out ProfileData
	if err := json.Unmarshal(b, &out); err != nil {
		return errors.Join(errors.New("profile_data: invalid json"), err)
	}
	*d = out
	return nil
}
