package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

const engagementWindow = 30 * 24 * time.Hour

type AnalyticsService interface {
	// CollectEngagement snapshots engagement for recently published Facebook
	// posts and returns how many rows were recorded.
	CollectEngagement(ctx context.Context) (int, error)
	ListForPost(ctx context.Context, userID, postID uuid.UUID) ([]*models.Analytics, error)
}

type analyticsService struct {
	ar  repository.AnalyticsRepository
	mr  repository.PostSocialMappingRepository
	pr  repository.PostRepository
	sp  repository.SocialProfileRepository
	fb  FacebookClient
	now func() time.Time
}

func NewAnalyticsService(
	ar repository.AnalyticsRepository,
	mr repository.PostSocialMappingRepository,
	pr repository.PostRepository,
	sp repository.SocialProfileRepository,
	fb FacebookClient) AnalyticsService {
	return &analyticsService{ar: ar, mr: mr, pr: pr, sp: sp, fb: fb, now: time.Now}
}

func (s *analyticsService) CollectEngagement(ctx context.Context) (int, error) {
	mappings, err := s.mr.ListPublishedByPlatform(ctx, models.PlatformFacebook, s.now().Add(-engagementWindow))
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	recorded := 0
	pages := map[uuid.UUID][]transfer.FacebookPage{}
	for _, m := range mappings {
		profile, err := s.sp.GetByID(ctx, m.SocialProfileID)
		if err != nil || profile == nil || profile.AccessToken == "" {
			slog.Warn("skipping engagement, profile unavailable", "mapping_id", m.ID)
			continue
		}

		token, err := s.pageToken(ctx, profile, m.ExternalPostID, pages)
		if err != nil {
			slog.Warn("skipping engagement, page token unavailable", "post_id", m.ExternalPostID, "error", err)
			continue
		}

		e, err := s.fb.GetPostEngagement(ctx, m.ExternalPostID, token)
		if err != nil {
			slog.Warn("engagement unavailable", "post_id", m.ExternalPostID, "error", err)
			continue
		}

		row := &models.Analytics{
			PostID:          m.PostID,
			SocialProfileID: m.SocialProfileID,
			Platform:        models.PlatformFacebook,
			LikesCount:      e.Likes,
			CommentsCount:   e.Comments,
			SharesCount:     e.Shares,
			ViewsCount:      e.Views,
			EngagementRate:  models.EngagementRate(e.Likes, e.Comments, e.Shares, e.Views),
			RecordedAt:      s.now(),
		}
		if _, err := s.ar.Create(ctx, row); err != nil {
			slog.Error(err.Error())
			continue
		}
		recorded++
	}

	slog.Info("engagement collected", "mappings", len(mappings), "recorded", recorded)
	return recorded, nil
}

// pageToken resolves the token of the page that owns postID. Pages are
// fetched once per profile and kept in cache for the rest of the run.
func (s *analyticsService) pageToken(ctx context.Context, profile *models.SocialProfile, postID string, cache map[uuid.UUID][]transfer.FacebookPage) (string, error) {
	if s.fb.MockMode() {
		return "", nil
	}

	pages, ok := cache[profile.ID]
	if !ok {
		var err error
		if pages, err = s.fb.GetPages(ctx, profile.AccessToken); err != nil {
			return "", err
		}
		cache[profile.ID] = pages
	}
	return findPageToken(pages, postPageID(postID, profile))
}

// postPageID reads the page id from a Graph post id ("{page}_{post}"),
// falling back to the first page stored on the profile.
func postPageID(postID string, profile *models.SocialProfile) string {
	if i := strings.Index(postID, "_"); i > 0 {
		return postID[:i]
	}
	if len(profile.ProfileData.Pages) > 0 {
		return profile.ProfileData.Pages[0].ID
	}
	return ""
}

func (s *analyticsService) ListForPost(ctx context.Context, userID, postID uuid.UUID) ([]*models.Analytics, error) {
	ok, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPostNotFound
	}

	rows, err := s.ar.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*models.Analytics{}
	}
	return rows, nil
}
