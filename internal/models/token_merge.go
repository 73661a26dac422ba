package models

import "time"

// TokenSet holds the OAuth credentials of a profile. An empty string or a nil
// expiry means the value was not supplied.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// MergeTokens combines the stored credentials with the ones from a new
// callback. Precedence, field by field: a supplied incoming value wins, an
// absent incoming value keeps the stored one. A reconnect that carries no
// refresh token therefore never clears the stored refresh token.
func MergeTokens(stored, incoming TokenSet) TokenSet {
	merged := stored
	if incoming.AccessToken != "" {
		merged.AccessToken = incoming.AccessToken
	}
	if incoming.RefreshToken != "" {
		merged.RefreshToken = incoming.RefreshToken
	}
	if incoming.ExpiresAt != nil {
		merged.ExpiresAt = incoming.ExpiresAt
	}
	return merged
}
