package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

// PublishScheduler defers publishing of a post until delay has passed.
type PublishScheduler interface {
	SchedulePublish(postID uuid.UUID, delay time.Duration) error
}

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, pc *transfer.PostCreation) (*models.Post, error)
	ListPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	GetPost(ctx context.Context, userID, postID uuid.UUID) (*transfer.PostDetails, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
	PublishPost(ctx context.Context, postID uuid.UUID) error
}

type postService struct {
	tx        repository.TxRunner
	pr        repository.PostRepository
	mr        repository.PostSocialMappingRepository
	sp        repository.SocialProfileRepository
	ar        repository.AnalyticsRepository
	users     repository.UserRepository
	fb        FacebookService
	bp        BusinessProfileService
	scheduler PublishScheduler
	now       func() time.Time
}

func NewPostService(
	tx repository.TxRunner,
	pr repository.PostRepository,
	mr repository.PostSocialMappingRepository,
	sp repository.SocialProfileRepository,
	ar repository.AnalyticsRepository,
	users repository.UserRepository,
	fb FacebookService,
	bp BusinessProfileService,
	scheduler PublishScheduler) PostService {
	return &postService{
		tx:        tx,
		pr:        pr,
		mr:        mr,
		sp:        sp,
		ar:        ar,
		users:     users,
		fb:        fb,
		bp:        bp,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		return nil, errors.New("post creation data is nil")
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}
	if len(pc.ProfileIDs) == 0 {
		return nil, errors.New("no social profiles selected")
	}

	profileIDs := make([]uuid.UUID, 0, len(pc.ProfileIDs))
	for _, raw := range pc.ProfileIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid profile id %q", raw)
		}
		profileIDs = append(profileIDs, id)
	}

	post := &models.Post{
		UserID:    userID,
		Title:     pc.Title,
		Content:   pc.Content,
		MediaURLs: pc.MediaURLs,
		Status:    models.PostStatusDraft,
	}
	var delay time.Duration
	if pc.ScheduledAt != nil && pc.ScheduledAt.After(s.now()) {
		at := *pc.ScheduledAt
		post.ScheduledAt = &at
		post.Status = models.PostStatusScheduled
		delay = at.Sub(s.now())
	}

	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range profileIDs {
			profile, err := s.sp.GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("error checking social profile %s: %w", id, err)
			}
			if profile == nil || profile.UserID != userID {
				return fmt.Errorf("social profile %s does not exist", id)
			}
		}

		postID, err := s.pr.Create(ctx, tx, post)
		if err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}
		post.ID = postID

		for _, id := range profileIDs {
			m := &models.PostSocialMapping{
				PostID:          postID,
				SocialProfileID: id,
				Status:          models.MappingStatusPending,
			}
			if _, err := s.mr.Create(ctx, tx, m); err != nil {
				return fmt.Errorf("error saving mapping for profile %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	if post.Status == models.PostStatusScheduled && s.scheduler != nil {
		if err := s.scheduler.SchedulePublish(post.ID, delay); err != nil {
			slog.Error("error scheduling post", "post_id", post.ID, "error", err)
			return post, fmt.Errorf("post saved but scheduling failed: %w", err)
		}
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *postService) owned(ctx context.Context, userID, postID uuid.UUID) error {
	if userID == uuid.Nil || postID == uuid.Nil {
		return ErrPostNotFound
	}
	ok, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

func (s *postService) GetPost(ctx context.Context, userID, postID uuid.UUID) (*transfer.PostDetails, error) {
	if err := s.owned(ctx, userID, postID); err != nil {
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	mappings, err := s.mr.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	analytics, err := s.ar.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if mappings == nil {
		mappings = []*models.PostSocialMapping{}
	}
	return &transfer.PostDetails{Post: *post, Mappings: mappings, Analytics: analytics}, nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	if err := s.owned(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

// PublishPost delivers every pending mapping of a post. The post is marked
// published when at least one mapping went out.
func (s *postService) PublishPost(ctx context.Context, postID uuid.UUID) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	mappings, err := s.mr.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}

	var pending []*models.PostSocialMapping
	for _, m := range mappings {
		if m.Status == models.MappingStatusPending {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		slog.Info("no pending mappings to publish", "post_id", postID)
		return nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		published int
	)
	semaphore := make(chan struct{}, 10)

	for _, m := range pending {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(m *models.PostSocialMapping) {
			defer wg.Done()
			defer func() { <-semaphore }()

			externalID, err := s.publishMapping(ctx, post, m)
			if err != nil {
				slog.Error("publish failed", "post_id", postID, "mapping_id", m.ID, "error", err)
				if err := s.mr.MarkFailed(ctx, m.ID, err.Error()); err != nil {
					slog.Error(err.Error())
				}
				return
			}

			if err := s.mr.MarkPublished(ctx, m.ID, externalID, s.now()); err != nil {
				slog.Error(err.Error())
				return
			}
			mu.Lock()
			published++
			mu.Unlock()
		}(m)
	}
	wg.Wait()

	status := models.PostStatusFailed
	var publishedAt *time.Time
	if published > 0 {
		status = models.PostStatusPublished
		at := s.now()
		publishedAt = &at
	}
	return s.pr.UpdateStatus(ctx, postID, status, publishedAt)
}

func (s *postService) publishMapping(ctx context.Context, post *models.Post, m *models.PostSocialMapping) (string, error) {
	profile, err := s.sp.GetByID(ctx, m.SocialProfileID)
	if err != nil {
		return "", err
	}
	if profile == nil || !profile.IsActive {
		return "", ErrNoActiveProfile
	}

	switch profile.Platform {
	case models.PlatformFacebook:
		data := transfer.FacebookPostData{Message: post.Content}
		if len(post.MediaURLs) > 0 {
			data.Link = post.MediaURLs[0]
		}
		res, err := s.fb.PublishForProfile(ctx, profile, data)
		if err != nil {
			return "", err
		}
		if res.PostID != "" {
			return res.PostID, nil
		}
		return res.ID, nil

	case models.PlatformGoogle:
		email, err := s.ownerEmail(ctx, profile)
		if err != nil {
			return "", err
		}
		parent, err := s.bp.DefaultLocation(ctx, email)
		if err != nil {
			return "", err
		}
		created, err := s.bp.CreateBusinessPost(ctx, email, parent, transfer.CreatePostRequest{
			Message:   post.Content,
			MediaURLs: post.MediaURLs,
		})
		if err != nil {
			return "", err
		}
		return created.Name, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, profile.Platform)
}

func (s *postService) ownerEmail(ctx context.Context, profile *models.SocialProfile) (string, error) {
	user, found, err := s.users.GetByID(ctx, profile.UserID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrUserNotFound
	}
	return user.Email, nil
}
