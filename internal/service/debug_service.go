package service

import (
	"context"
	"net/url"
	"os"
	"strings"

	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

var environmentVariables = []string{
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"GOOGLE_CALLBACK_URL",
	"GOOGLE_API_KEY",
	"FACEBOOK_APP_ID",
	"FACEBOOK_APP_SECRET",
	"FACEBOOK_CALLBACK_URL",
	"JWT_SECRET",
	"SUPABASE_DATABASE_URL",
	"TOKEN_ENCRYPTION_KEY",
	"REDIS_ADDR",
	"FRONTEND_URL",
	"CORS_ORIGIN",
	"NODE_ENV",
	"PORT",
}

// DebugService reports on configuration and token health. It never returns secrets.
type DebugService interface {
	GoogleConfig() transfer.OAuthConfigReport
	FacebookConfig() transfer.OAuthConfigReport
	OAuthURL(state string) (*transfer.OAuthURLDebug, error)
	ValidateEnvironment() transfer.EnvironmentReport
	TestTokenRefresh(ctx context.Context, email string) transfer.TokenRefreshTest
}

type debugService struct {
	cfg    config.Config
	oauth  OAuthService
	cs     ConnectionService
	ts     TokenService
	lookup func(string) (string, bool)
}

func NewDebugService(cfg config.Config, oauth OAuthService, cs ConnectionService, ts TokenService) DebugService {
	return &debugService{cfg: cfg, oauth: oauth, cs: cs, ts: ts, lookup: os.LookupEnv}
}

func (s *debugService) GoogleConfig() transfer.OAuthConfigReport {
	g := s.cfg.Google
	r := transfer.OAuthConfigReport{
		Platform:        models.PlatformGoogle,
		ClientIDSet:     g.ClientID != "",
		ClientSecretSet: g.ClientSecret != "",
		CallbackURL:     g.CallbackURL,
		Scopes:          GoogleScopes,
		Issues:          []string{},
		Recommendations: []string{},
	}

	if !r.ClientIDSet {
		r.Issues = append(r.Issues, "GOOGLE_CLIENT_ID is not set")
	} else if !strings.HasSuffix(g.ClientID, ".apps.googleusercontent.com") {
		r.Issues = append(r.Issues, "GOOGLE_CLIENT_ID does not look like a web client id")
	}
	if !r.ClientSecretSet {
		r.Issues = append(r.Issues, "GOOGLE_CLIENT_SECRET is not set")
	}
	if g.CallbackURL == "" {
		r.Issues = append(r.Issues, "GOOGLE_CALLBACK_URL is not set")
	} else if !strings.HasSuffix(g.CallbackURL, "/auth/google/oauth/callback") {
		r.Recommendations = append(r.Recommendations, "GOOGLE_CALLBACK_URL usually ends with /auth/google/oauth/callback")
	}
	if s.cfg.IsProduction() && strings.HasPrefix(g.CallbackURL, "http://") {
		r.Recommendations = append(r.Recommendations, "Use an https callback URL in production")
	}
	r.Recommendations = append(r.Recommendations,
		"Add the callback URL to the authorized redirect URIs of the OAuth client",
		"Enable the My Business Account Management and Business Information APIs",
	)
	r.Valid = len(r.Issues) == 0
	return r
}

func (s *debugService) FacebookConfig() transfer.OAuthConfigReport {
	f := s.cfg.Facebook
	r := transfer.OAuthConfigReport{
		Platform:        models.PlatformFacebook,
		ClientIDSet:     f.AppID != "",
		ClientSecretSet: f.AppSecret != "",
		CallbackURL:     f.CallbackURL,
		Scopes:          FacebookScopes,
		MockMode:        f.MockMode,
		Issues:          []string{},
		Recommendations: []string{},
	}

	if !r.ClientIDSet {
		r.Issues = append(r.Issues, "FACEBOOK_APP_ID is not set")
	}
	if !r.ClientSecretSet {
		r.Issues = append(r.Issues, "FACEBOOK_APP_SECRET is not set")
	}
	if f.CallbackURL == "" {
		r.Issues = append(r.Issues, "FACEBOOK_CALLBACK_URL is not set")
	}
	if f.MockMode {
		r.Recommendations = append(r.Recommendations, "Mock mode is on: publishing calls return fabricated ids")
	}
	r.Valid = len(r.Issues) == 0
	return r
}

func (s *debugService) OAuthURL(state string) (*transfer.OAuthURLDebug, error) {
	authURL, err := s.oauth.AuthURL(models.PlatformGoogle, state)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(authURL)
	if err != nil {
		return nil, err
	}
	params := map[string]string{}
	for k, v := range u.Query() {
		params[k] = strings.Join(v, " ")
	}
	return &transfer.OAuthURLDebug{URL: authURL, Params: params}, nil
}

func (s *debugService) ValidateEnvironment() transfer.EnvironmentReport {
	r := transfer.EnvironmentReport{
		Environment: s.cfg.Environment,
		Variables:   map[string]bool{},
		Missing:     []string{},
	}
	for _, name := range environmentVariables {
		v, ok := s.lookup(name)
		set := ok && v != ""
		r.Variables[name] = set
		if !set {
			r.Missing = append(r.Missing, name)
		}
	}
	r.Valid = len(s.cfg.Validate()) == 0
	return r
}

func (s *debugService) TestTokenRefresh(ctx context.Context, email string) transfer.TokenRefreshTest {
	profile, err := s.cs.GetActiveGoogleProfile(ctx, email)
	if err != nil {
		return transfer.TokenRefreshTest{Error: err.Error()}
	}
	if profile == nil {
		return transfer.TokenRefreshTest{Error: ErrNoActiveProfile.Error()}
	}
	if profile.RefreshToken == "" {
		return transfer.TokenRefreshTest{Error: ErrNoRefreshToken.Error()}
	}

	if err := s.ts.RefreshAndPersist(ctx, profile); err != nil {
		return transfer.TokenRefreshTest{Error: err.Error()}
	}
	return transfer.TokenRefreshTest{
		Success:     true,
		TokenLength: len(profile.AccessToken),
		ExpiresAt:   profile.TokenExpiresAt,
	}
}
