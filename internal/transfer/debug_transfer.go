package transfer

import "time"

type OAuthConfigReport struct {
	Platform        string   `json:"platform"`
	ClientIDSet     bool     `json:"clientIdSet"`
	ClientSecretSet bool     `json:"clientSecretSet"`
	CallbackURL     string   `json:"callbackUrl"`
	Scopes          []string `json:"scopes"`
	MockMode        bool     `json:"mockMode,omitempty"`
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

type OAuthURLDebug struct {
	URL    string            `json:"url"`
	Params map[string]string `json:"params"`
}

type EnvironmentReport struct {
	Environment string          `json:"environment"`
	Variables   map[string]bool `json:"variables"`
	Missing     []string        `json:"missing"`
	Valid       bool            `json:"valid"`
}

type TokenRefreshTest struct {
	Success     bool       `json:"success"`
	TokenLength int        `json:"tokenLength,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}
