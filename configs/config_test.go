package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("FACEBOOK_MOCK_MODE", "")
	t.Setenv("SUPABASE_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/selfpost")

	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3001", cfg.Port)
	assert.False(t, cfg.Facebook.MockMode)
	assert.Equal(t, "postgres://localhost/selfpost", cfg.DatabaseURL)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.Google.TokenURL)
}

func TestLoadConfigDevelopmentEnablesMockMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	t.Setenv("FACEBOOK_MOCK_MODE", "")

	assert.True(t, LoadConfig().Facebook.MockMode)
}

func TestLoadConfigProductionDisablesMockMode(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("FACEBOOK_MOCK_MODE", "")

	cfg := LoadConfig()

	assert.False(t, cfg.Facebook.MockMode)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigExplicitMockMode(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("FACEBOOK_MOCK_MODE", "true")

	assert.True(t, LoadConfig().Facebook.MockMode)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "JWT_SECRET", "SUPABASE_DATABASE_URL"}, cfg.Validate())

	cfg = &Config{
		Google:      Google{ClientID: "id", ClientSecret: "secret"},
		JWTSecret:   "jwt",
		DatabaseURL: "postgres://",
	}
	assert.Empty(t, cfg.Validate())
}

func TestEncryptionKeyFallback(t *testing.T) {
	cfg := &Config{JWTSecret: "jwt"}
	assert.Equal(t, "jwt", cfg.EncryptionKey())

	cfg.TokenEncryptionKey = "dedicated"
	assert.Equal(t, "dedicated", cfg.EncryptionKey())
}
