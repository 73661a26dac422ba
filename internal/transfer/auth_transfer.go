package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/selfpost/internal/models"
)

type CustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type StateClaims struct {
	Nonce    string `json:"nonce"`
	Platform string `json:"platform"`
	jwt.RegisteredClaims
}

// OAuthCallback is what a provider callback hands to the connector.
type OAuthCallback struct {
	Profile      models.ProfileData `json:"profile"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	ExpiresAt    *time.Time         `json:"expiresAt,omitempty"`
}

type ConnectionResult struct {
	Success         bool   `json:"success"`
	ProfileID       string `json:"profileId,omitempty"`
	UserID          string `json:"userId,omitempty"`
	UserEmail       string `json:"userEmail,omitempty"`
	Message         string `json:"message,omitempty"`
	HasRefreshToken bool   `json:"hasRefreshToken,omitempty"`
	Error           string `json:"error,omitempty"`
}

type Connection struct {
	ID          string             `json:"id"`
	Platform    string             `json:"platform"`
	IsActive    bool               `json:"isActive"`
	ConnectedAt time.Time          `json:"connectedAt"`
	ProfileData models.ProfileData `json:"profileData"`
}

type ConnectionsResponse struct {
	Connections []Connection `json:"connections"`
}

type DisconnectResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Platform string `json:"platform,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ClearStateResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	ClearedProfiles int    `json:"clearedProfiles"`
	Error           string `json:"error,omitempty"`
}

// TokenDebugInfo never carries token values, only their presence and length.
type TokenDebugInfo struct {
	Email              string     `json:"email"`
	ProfileID          string     `json:"profileId"`
	Platform           string     `json:"platform"`
	IsActive           bool       `json:"isActive"`
	HasAccessToken     bool       `json:"hasAccessToken"`
	AccessTokenLength  int        `json:"accessTokenLength"`
	HasRefreshToken    bool       `json:"hasRefreshToken"`
	RefreshTokenLength int        `json:"refreshTokenLength"`
	TokenExpiresAt     *time.Time `json:"tokenExpiresAt"`
	Expired            bool       `json:"expired"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
