package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

var (
	GoogleScopes = []string{
		"profile",
		"email",
		"https://www.googleapis.com/auth/business.manage",
	}
	FacebookScopes = []string{
		"public_profile",
		"email",
		"pages_manage_posts",
		"pages_read_engagement",
		"pages_show_list",
		"business_management",
	}
)

// OAuthService runs the provider side of the consent flow: building the
// consent URL and exchanging the returned code.
type OAuthService interface {
	AuthURL(platform, state string) (string, error)
	ExchangeGoogle(ctx context.Context, code string) (*transfer.OAuthCallback, error)
	ExchangeFacebook(ctx context.Context, code string) (*transfer.OAuthCallback, error)
}

type oauthService struct {
	cfg        config.Config
	google     GoogleBusinessClient
	facebook   FacebookClient
	httpClient *http.Client
}

func NewOAuthService(cfg config.Config, google GoogleBusinessClient, facebook FacebookClient, httpClient *http.Client) OAuthService {
	return &oauthService{
		cfg:        cfg,
		google:     google,
		facebook:   facebook,
		httpClient: httpClient,
	}
}

func (s *oauthService) googleConfig() *oauth2.Config {
	endpoint := google.Endpoint
	endpoint.TokenURL = s.cfg.Google.TokenURL
	return &oauth2.Config{
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		RedirectURL:  s.cfg.Google.CallbackURL,
		Scopes:       GoogleScopes,
		Endpoint:     endpoint,
	}
}

func (s *oauthService) facebookConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Facebook.AppID,
		ClientSecret: s.cfg.Facebook.AppSecret,
		RedirectURL:  s.cfg.Facebook.CallbackURL,
		Scopes:       FacebookScopes,
		Endpoint:     facebook.Endpoint,
	}
}

func (s *oauthService) AuthURL(platform, state string) (string, error) {
	switch platform {
	case models.PlatformGoogle:
		if s.cfg.Google.ClientID == "" {
			return "", ErrGoogleCredentialsMissing
		}
		// offline + consent, otherwise Google omits the refresh token on repeat grants
		return s.googleConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
	case models.PlatformFacebook:
		if s.cfg.Facebook.AppID == "" {
			return "", errors.New("facebook app id is not configured")
		}
		return s.facebookConfig().AuthCodeURL(state), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
}

func (s *oauthService) exchangeContext(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func (s *oauthService) ExchangeGoogle(ctx context.Context, code string) (*transfer.OAuthCallback, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}
	if s.cfg.Google.ClientID == "" || s.cfg.Google.ClientSecret == "" {
		return nil, ErrGoogleCredentialsMissing
	}

	token, err := s.googleConfig().Exchange(s.exchangeContext(ctx), code)
	if err != nil {
		slog.Error("google code exchange failed", "error", err)
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	info, err := s.google.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	cb := &transfer.OAuthCallback{
		Profile: models.ProfileData{
			ID:                info.ID,
			Provider:          models.PlatformGoogle,
			DisplayName:       info.Name,
			Emails:            []models.ProfileValue{{Value: info.Email}},
			IsBusinessProfile: true,
		},
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if info.Picture != "" {
		cb.Profile.Photos = []models.ProfileValue{{Value: info.Picture}}
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cb.ExpiresAt = &expiry
	}

	if token.RefreshToken == "" {
		slog.Warn("google did not return a refresh token; keeping any stored one", "email", info.Email)
	}
	return cb, nil
}

func (s *oauthService) ExchangeFacebook(ctx context.Context, code string) (*transfer.OAuthCallback, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}
	if !s.cfg.FacebookConfigured() {
		return nil, errors.New("facebook app id/secret are not configured")
	}

	token, err := s.facebookConfig().Exchange(s.exchangeContext(ctx), code)
	if err != nil {
		slog.Error("facebook code exchange failed", "error", err)
		return nil, fmt.Errorf("exchange facebook code: %w", err)
	}

	me, err := s.facebook.GetMe(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	cb := &transfer.OAuthCallback{
		Profile: models.ProfileData{
			ID:          me.ID,
			Provider:    models.PlatformFacebook,
			DisplayName: me.Name,
		},
		AccessToken: token.AccessToken,
	}
	if me.Email != "" {
		cb.Profile.Emails = []models.ProfileValue{{Value: me.Email}}
	}
	if me.Picture.Data.URL != "" {
		cb.Profile.Photos = []models.ProfileValue{{Value: me.Picture.Data.URL}}
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cb.ExpiresAt = &expiry
	}

	pages, err := s.facebook.GetPages(ctx, token.AccessToken)
	if err != nil {
		slog.Warn("could not list facebook pages at connect time", "error", err)
	}
	for _, p := range pages {
		cb.Profile.Pages = append(cb.Profile.Pages, models.PageRef{ID: p.ID, Name: p.Name, Category: p.Category})
	}
	return cb, nil
}
