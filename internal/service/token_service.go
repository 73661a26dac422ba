package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type TokenService interface {
	// RefreshAccessToken trades a refresh token for a fresh access token. It
	// does not retry and does not cache the result.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	RefreshAndPersist(ctx context.Context, sp *models.SocialProfile) error
}

type tokenService struct {
	cfg        config.Config
	sp         repository.SocialProfileRepository
	httpClient *http.Client
}

func NewTokenService(cfg config.Config, sp repository.SocialProfileRepository, httpClient *http.Client) TokenService {
	return &tokenService{
		cfg:        cfg,
		sp:         sp,
		httpClient: httpClient,
	}
}

func (s *tokenService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   google.Endpoint.AuthURL,
			TokenURL:  s.cfg.Google.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *tokenService) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if s.cfg.Google.ClientID == "" || s.cfg.Google.ClientSecret == "" {
		slog.Error("token refresh requested without google client credentials")
		return nil, fmt.Errorf("failed to refresh access token: %w", ErrGoogleCredentialsMissing)
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("failed to refresh access token: %w", ErrMissingRefreshToken)
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	token, err := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Error("google token refresh failed", "error", err)
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("failed to refresh access token: empty access token in response")
	}
	return token, nil
}

func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (s *tokenService) RefreshAndPersist(ctx context.Context, sp *models.SocialProfile) error {
	token, err := s.RefreshToken(ctx, sp.RefreshToken)
	if err != nil {
		return err
	}

	incoming := models.TokenSet{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		incoming.ExpiresAt = &expiry
	}

	if err := s.sp.SetTokens(ctx, sp.ID, incoming); err != nil {
		return fmt.Errorf("persist refreshed token for profile %s: %w", sp.ID, err)
	}
	sp.SetTokens(models.MergeTokens(sp.Tokens(), incoming))
	return nil
}
