package service

import (
	"context"
	"time"

	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

// FacebookService resolves the stored user token by email before calling Graph.
type FacebookService interface {
	GetFacebookPages(ctx context.Context, email string) ([]transfer.FacebookPage, error)
	PostToFacebookPage(ctx context.Context, email, pageID string, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error)
	ScheduleFacebookPost(ctx context.Context, email, pageID string, post transfer.FacebookPostData, at time.Time) (*transfer.FacebookPostResult, error)
	GetPageInsights(ctx context.Context, email, pageID string, metrics []string) (*transfer.FacebookInsightsResponse, error)
	PublishForProfile(ctx context.Context, profile *models.SocialProfile, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error)
}

type facebookService struct {
	cs ConnectionService
	fb FacebookClient
}

func NewFacebookService(cs ConnectionService, fb FacebookClient) FacebookService {
	return &facebookService{cs: cs, fb: fb}
}

func (s *facebookService) userToken(ctx context.Context, email string) (*models.SocialProfile, error) {
	profile, err := s.cs.GetActiveProfile(ctx, email, models.PlatformFacebook)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.AccessToken == "" {
		return nil, ErrNoFacebookConnection
	}
	return profile, nil
}

func (s *facebookService) GetFacebookPages(ctx context.Context, email string) ([]transfer.FacebookPage, error) {
	profile, err := s.userToken(ctx, email)
	if err != nil {
		return nil, err
	}

	pages, err := s.fb.GetPages(ctx, profile.AccessToken)
	if err != nil {
		return nil, err
	}

	// page tokens stay server side
	out := make([]transfer.FacebookPage, 0, len(pages))
	for _, p := range pages {
		p.AccessToken = ""
		out = append(out, p)
	}
	return out, nil
}

func (s *facebookService) pageToken(ctx context.Context, userToken, pageID string) (string, error) {
	pages, err := s.fb.GetPages(ctx, userToken)
	if err != nil {
		return "", err
	}
	return findPageToken(pages, pageID)
}

func findPageToken(pages []transfer.FacebookPage, pageID string) (string, error) {
	for _, p := range pages {
		if p.ID == pageID {
			return p.AccessToken, nil
		}
	}
	return "", ErrPageNotFound
}

func (s *facebookService) resolvePage(ctx context.Context, email, pageID string) (string, error) {
	profile, err := s.userToken(ctx, email)
	if err != nil {
		return "", err
	}
	if s.fb.MockMode() {
		return "", nil
	}
	return s.pageToken(ctx, profile.AccessToken, pageID)
}

func (s *facebookService) PostToFacebookPage(ctx context.Context, email, pageID string, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error) {
	token, err := s.resolvePage(ctx, email, pageID)
	if err != nil {
		return nil, err
	}
	return s.fb.PostToPage(ctx, pageID, token, post)
}

func (s *facebookService) ScheduleFacebookPost(ctx context.Context, email, pageID string, post transfer.FacebookPostData, at time.Time) (*transfer.FacebookPostResult, error) {
	token, err := s.resolvePage(ctx, email, pageID)
	if err != nil {
		return nil, err
	}
	return s.fb.SchedulePost(ctx, pageID, token, post, at)
}

func (s *facebookService) GetPageInsights(ctx context.Context, email, pageID string, metrics []string) (*transfer.FacebookInsightsResponse, error) {
	token, err := s.resolvePage(ctx, email, pageID)
	if err != nil {
		return nil, err
	}
	return s.fb.GetPageInsights(ctx, pageID, token, metrics)
}

// PublishForProfile posts to the first page stored on the profile at connect time.
func (s *facebookService) PublishForProfile(ctx context.Context, profile *models.SocialProfile, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error) {
	if profile == nil || !profile.IsActive || profile.AccessToken == "" {
		return nil, ErrNoFacebookConnection
	}
	if len(profile.ProfileData.Pages) == 0 {
		return nil, ErrPageNotFound
	}
	pageID := profile.ProfileData.Pages[0].ID

	token := ""
	if !s.fb.MockMode() {
		var err error
		if token, err = s.pageToken(ctx, profile.AccessToken, pageID); err != nil {
			return nil, err
		}
	}
	return s.fb.PostToPage(ctx, pageID, token, post)
}
