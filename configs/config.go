package config

import (
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Google struct {
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	APIKey         string
	TokenURL       string
	ReviewsAPIURL  string
	AccountsAPIURL string
	InfoAPIURL     string
}

type Facebook struct {
	AppID       string
	AppSecret   string
	CallbackURL string
	GraphURL    string
	MockMode    bool
}

type Config struct {
	Google             Google
	Facebook           Facebook
	DatabaseURL        string
	RedisURI           string
	FrontendURL        string
	CorsOrigin         string
	Environment        string
	Port               string
	JWTSecret          string
	TokenEncryptionKey string
	CookieName         string
	R2                 R2
}

func LoadConfig() *Config {
	env := getEnv("NODE_ENV", "development")

	return &Config{
		Google: Google{
			ClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
			CallbackURL:    getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3001/auth/google/oauth/callback"),
			APIKey:         getEnv("GOOGLE_API_KEY", ""),
			TokenURL:       getEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			ReviewsAPIURL:  getEnv("GOOGLE_REVIEWS_API_URL", "https://mybusiness.googleapis.com/v4/"),
			AccountsAPIURL: getEnv("GOOGLE_ACCOUNTS_API_URL", ""),
			InfoAPIURL:     getEnv("GOOGLE_INFO_API_URL", ""),
		},
		Facebook: Facebook{
			AppID:       getEnv("FACEBOOK_APP_ID", ""),
			AppSecret:   getEnv("FACEBOOK_APP_SECRET", ""),
			CallbackURL: getEnv("FACEBOOK_CALLBACK_URL", "http://localhost:3001/auth/facebook/oauth/callback"),
			GraphURL:    getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v18.0"),
			MockMode:    getBool("FACEBOOK_MOCK_MODE", os.Getenv("NODE_ENV") == "development"),
		},
		DatabaseURL:        getEnv("SUPABASE_DATABASE_URL", getEnv("DATABASE_URL", "")),
		RedisURI:           getEnv("REDIS_ADDR", "localhost:6379"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CorsOrigin:         getEnv("CORS_ORIGIN", "http://localhost:3000"),
		Environment:        env,
		Port:               getEnv("PORT", "3001"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		CookieName:         getEnv("COOKIE_NAME", "selfpost_session"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  strings.TrimSuffix(getEnv("R2_PUBLIC_URL", ""), "/"),
		},
	}
}

// Validate lists the required settings that are missing. An empty result means
// the OAuth strategies can be constructed.
func (c *Config) Validate() []string {
	var missing []string
	if c.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "SUPABASE_DATABASE_URL")
	}
	return missing
}

// FacebookConfigured reports whether the Facebook strategy can be mounted.
func (c *Config) FacebookConfigured() bool {
	return c.Facebook.AppID != "" && c.Facebook.AppSecret != ""
}

// EncryptionKey falls back to the JWT secret when no dedicated key is set.
func (c *Config) EncryptionKey() string {
	if c.TokenEncryptionKey != "" {
		return c.TokenEncryptionKey
	}
	return c.JWTSecret
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
