package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/metrics"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

// ConnectionService owns the link between users and their platform profiles.
type ConnectionService interface {
	StoreConnection(ctx context.Context, platform string, cb transfer.OAuthCallback) transfer.ConnectionResult
	StoreGoogleConnection(ctx context.Context, cb transfer.OAuthCallback) transfer.ConnectionResult
	StoreFacebookConnection(ctx context.Context, cb transfer.OAuthCallback) transfer.ConnectionResult
	GetActiveProfile(ctx context.Context, email, platform string) (*models.SocialProfile, error)
	GetActiveGoogleProfile(ctx context.Context, email string) (*models.SocialProfile, error)
	GetUserConnections(ctx context.Context, email string) (*transfer.ConnectionsResponse, error)
	DisconnectPlatform(ctx context.Context, email, platform string) transfer.DisconnectResult
	ClearOAuthState(ctx context.Context, email string) transfer.ClearStateResult
	DebugTokens(ctx context.Context, email, platform string) (*transfer.TokenDebugInfo, error)
	ListProfiles(ctx context.Context) ([]*models.SocialProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.SocialProfile, error)
}

type connectionService struct {
	tx repository.TxRunner
	u  repository.UserRepository
	sp repository.SocialProfileRepository
}

func NewConnectionService(tx repository.TxRunner, u repository.UserRepository, sp repository.SocialProfileRepository) ConnectionService {
	return &connectionService{
		tx: tx,
		u:  u,
		sp: sp,
	}
}

func supportedPlatform(platform string) bool {
	return platform == models.PlatformGoogle || platform == models.PlatformFacebook
}

func (s *connectionService) StoreGoogleConnection(ctx context.Context, cb transfer.OAuthCallback) transfer.ConnectionResult {
	return s.StoreConnection(ctx, models.PlatformGoogle, cb)
}

func (s *connectionService) StoreFacebookConnection(ctx context.Context, cb transfer.OAuthCallback) transfer.ConnectionResult {
	return s.StoreConnection(ctx, models.PlatformFacebook, cb)
}

func (s *connectionService) StoreConnection(ctx context.Context, platform string, cb transfer.OAuthCallback) (result transfer.ConnectionResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("store connection panicked", "platform", platform, "panic", r)
			result = transfer.ConnectionResult{Success: false, Error: fmt.Sprintf("failed to store %s connection", platform)}
		}
		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		metrics.ConnectionsStored.WithLabelValues(platform, outcome).Inc()
	}()

	if !supportedPlatform(platform) {
		return transfer.ConnectionResult{Success: false, Error: fmt.Sprintf("%s: %s", ErrUnsupportedPlatform, platform)}
	}

	email := cb.Profile.PrimaryEmail()
	if email == "" {
		return transfer.ConnectionResult{Success: false, Error: fmt.Sprintf("No email found in %s profile", platform)}
	}
	if cb.Profile.ID == "" {
		return transfer.ConnectionResult{Success: false, Error: fmt.Sprintf("No user id found in %s profile", platform)}
	}
	if cb.AccessToken == "" {
		return transfer.ConnectionResult{Success: false, Error: fmt.Sprintf("No access token received from %s", platform)}
	}
	if cb.Profile.Provider == "" {
		cb.Profile.Provider = platform
	}

	var profile *models.SocialProfile
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		user, err := s.findOrCreateUser(ctx, tx, platform, email, cb.Profile)
		if err != nil {
			return err
		}

		profile, err = s.upsertProfile(ctx, tx, user.ID, platform, cb)
		return err
	})
	if err != nil {
		slog.Error("failed to store connection", "platform", platform, "email", email, "error", err)
		return transfer.ConnectionResult{Success: false, Error: err.Error()}
	}

	slog.Info("connection stored", "platform", platform, "email", email, "profile_id", profile.ID,
		"has_refresh_token", profile.RefreshToken != "")

	return transfer.ConnectionResult{
		Success:         true,
		ProfileID:       profile.ID.String(),
		UserID:          profile.UserID.String(),
		UserEmail:       email,
		Message:         fmt.Sprintf("%s connection stored successfully", displayPlatform(platform)),
		HasRefreshToken: profile.RefreshToken != "",
	}
}

func (s *connectionService) findOrCreateUser(ctx context.Context, tx *sql.Tx, platform, email string, data models.ProfileData) (*models.User, error) {
	user, exists, err := s.u.GetByEmail(ctx, tx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !exists {
		user = &models.User{
			Email:     email,
			Name:      data.DisplayName,
			AvatarURL: data.PrimaryPhoto(),
		}
		if platform == models.PlatformGoogle {
			user.GoogleID = data.ID
		}
		if user.ID, err = s.u.Create(ctx, tx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}

	changed := false
	if user.Name == "" && data.DisplayName != "" {
		user.Name = data.DisplayName
		changed = true
	}
	if user.AvatarURL == "" && data.PrimaryPhoto() != "" {
		user.AvatarURL = data.PrimaryPhoto()
		changed = true
	}
	if platform == models.PlatformGoogle && user.GoogleID == "" {
		user.GoogleID = data.ID
		changed = true
	}
	if changed {
		if err := s.u.Update(ctx, tx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return user, nil
}

func (s *connectionService) upsertProfile(ctx context.Context, tx *sql.Tx, userID uuid.UUID, platform string, cb transfer.OAuthCallback) (*models.SocialProfile, error) {
	incoming := models.TokenSet{
		AccessToken:  cb.AccessToken,
		RefreshToken: cb.RefreshToken,
		ExpiresAt:    cb.ExpiresAt,
	}

	existing, err := s.sp.GetByUserAndPlatform(ctx, tx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("look up %s profile: %w", platform, err)
	}

	if existing == nil {
		profile := &models.SocialProfile{
			UserID:         userID,
			Platform:       platform,
			PlatformUserID: cb.Profile.ID,
			ProfileData:    cb.Profile,
			IsActive:       true,
		}
		profile.SetTokens(incoming)
		if profile.ID, err = s.sp.Create(ctx, tx, profile); err != nil {
			return nil, fmt.Errorf("create %s profile: %w", platform, err)
		}
		return profile, nil
	}

	existing.SetTokens(models.MergeTokens(existing.Tokens(), incoming))
	existing.PlatformUserID = cb.Profile.ID
	existing.ProfileData = cb.Profile
	existing.IsActive = true
	if err := s.sp.Update(ctx, tx, existing); err != nil {
		return nil, fmt.Errorf("update %s profile: %w", platform, err)
	}
	return existing, nil
}

func (s *connectionService) GetActiveProfile(ctx context.Context, email, platform string) (*models.SocialProfile, error) {
	user, exists, err := s.u.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return s.sp.GetActive(ctx, user.ID, platform)
}

func (s *connectionService) GetActiveGoogleProfile(ctx context.Context, email string) (*models.SocialProfile, error) {
	return s.GetActiveProfile(ctx, email, models.PlatformGoogle)
}

func (s *connectionService) GetUserConnections(ctx context.Context, email string) (*transfer.ConnectionsResponse, error) {
	res := &transfer.ConnectionsResponse{Connections: []transfer.Connection{}}

	user, exists, err := s.u.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return res, nil
	}

	profiles, err := s.sp.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		res.Connections = append(res.Connections, transfer.Connection{
			ID:          p.ID.String(),
			Platform:    p.Platform,
			IsActive:    p.IsActive,
			ConnectedAt: p.CreatedAt,
			ProfileData: p.ProfileData,
		})
	}
	return res, nil
}

func (s *connectionService) DisconnectPlatform(ctx context.Context, email, platform string) transfer.DisconnectResult {
	user, exists, err := s.u.GetByEmail(ctx, nil, email)
	if err != nil {
		slog.Error("disconnect: user lookup failed", "email", email, "error", err)
		return transfer.DisconnectResult{Success: false, Error: err.Error()}
	}
	if !exists {
		return transfer.DisconnectResult{Success: false, Error: ErrUserNotFound.Error()}
	}

	profile, err := s.sp.GetActive(ctx, user.ID, platform)
	if err != nil {
		slog.Error("disconnect: profile lookup failed", "email", email, "platform", platform, "error", err)
		return transfer.DisconnectResult{Success: false, Error: err.Error()}
	}
	if profile == nil {
		return transfer.DisconnectResult{Success: false, Error: fmt.Sprintf("%s profile not found or already disconnected", platform)}
	}

	profile.IsActive = false
	profile.AccessToken = ""
	profile.RefreshToken = ""
	if err := s.sp.Update(ctx, nil, profile); err != nil {
		slog.Error("disconnect: update failed", "profile_id", profile.ID, "error", err)
		return transfer.DisconnectResult{Success: false, Error: err.Error()}
	}

	slog.Info("platform disconnected", "email", email, "platform", platform, "profile_id", profile.ID)
	return transfer.DisconnectResult{
		Success:  true,
		Message:  fmt.Sprintf("Successfully disconnected from %s", platform),
		Platform: platform,
	}
}

// ClearOAuthState wipes every Google profile of the user so the next connect
// goes through a fresh consent screen.
func (s *connectionService) ClearOAuthState(ctx context.Context, email string) transfer.ClearStateResult {
	user, exists, err := s.u.GetByEmail(ctx, nil, email)
	if err != nil {
		return transfer.ClearStateResult{Success: false, Error: err.Error()}
	}
	if !exists {
		return transfer.ClearStateResult{Success: false, Error: ErrUserNotFound.Error()}
	}

	profiles, err := s.sp.ListByUserID(ctx, user.ID)
	if err != nil {
		return transfer.ClearStateResult{Success: false, Error: err.Error()}
	}

	var google []*models.SocialProfile
	for _, p := range profiles {
		if p.Platform == models.PlatformGoogle {
			google = append(google, p)
		}
	}
	if len(google) == 0 {
		return transfer.ClearStateResult{Success: false, Error: "No Google connection found"}
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		for _, p := range google {
			p.SetTokens(models.TokenSet{})
			p.ProfileData = models.ProfileData{}
			p.IsActive = false
			if err := s.sp.Update(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("clear oauth state failed", "email", email, "error", err)
		return transfer.ClearStateResult{Success: false, Error: err.Error()}
	}

	return transfer.ClearStateResult{
		Success:         true,
		Message:         "OAuth state cleared. Reconnect to grant fresh consent.",
		ClearedProfiles: len(google),
	}
}

func (s *connectionService) DebugTokens(ctx context.Context, email, platform string) (*transfer.TokenDebugInfo, error) {
	user, exists, err := s.u.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	profile, err := s.sp.GetByUserAndPlatform(ctx, nil, user.ID, platform)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("no %s profile found", platform)
	}

	info := &transfer.TokenDebugInfo{
		Email:              email,
		ProfileID:          profile.ID.String(),
		Platform:           profile.Platform,
		IsActive:           profile.IsActive,
		HasAccessToken:     profile.AccessToken != "",
		AccessTokenLength:  len(profile.AccessToken),
		HasRefreshToken:    profile.RefreshToken != "",
		RefreshTokenLength: len(profile.RefreshToken),
		TokenExpiresAt:     profile.TokenExpiresAt,
		UpdatedAt:          profile.UpdatedAt,
	}
	if profile.TokenExpiresAt != nil {
		info.Expired = profile.TokenExpiresAt.Before(time.Now())
	}
	return info, nil
}

func (s *connectionService) ListProfiles(ctx context.Context) ([]*models.SocialProfile, error) {
	return s.sp.List(ctx)
}

func (s *connectionService) GetProfile(ctx context.Context, id uuid.UUID) (*models.SocialProfile, error) {
	profile, err := s.sp.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("social profile not found")
	}
	return profile, nil
}

func displayPlatform(platform string) string {
	switch platform {
	case models.PlatformGoogle:
		return "Google"
	case models.PlatformFacebook:
		return "Facebook"
	}
	return platform
}
