package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/service"
)

const refreshWindow = 15 * time.Minute

type TokenRefreshJob struct {
	sr  repository.SocialProfileRepository
	ts  service.TokenService
	now func() time.Time
}

func NewTokenRefreshJob(sr repository.SocialProfileRepository, ts service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr:  sr,
		ts:  ts,
		now: time.Now,
	}
}

// RefreshTokens renews Google access tokens that expire within the window.
// It returns the number of profiles refreshed.
func (c *TokenRefreshJob) RefreshTokens() int {
	ctx := context.Background()

	profiles, err := c.sr.ListExpiring(ctx, models.PlatformGoogle, c.now().Add(refreshWindow))
	if err != nil {
		slog.Info(err.Error())
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		refreshed int
	)

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, p := range profiles {
		if p.RefreshToken == "" {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(p *models.SocialProfile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.ts.RefreshAndPersist(ctx, p); err != nil {
				slog.Info("Unable to refresh tokens for Google", "profile_id", p.ID, "error", err)
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(profiles) > 0 {
		slog.Info("token refresh sweep finished", "candidates", len(profiles), "refreshed", refreshed)
	}
	return refreshed
}

// Run adapts RefreshTokens to cron.
func (c *TokenRefreshJob) Run() {
	c.RefreshTokens()
}
