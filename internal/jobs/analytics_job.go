package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/selfpost/internal/service"
)

type AnalyticsJob struct {
	as service.AnalyticsService
}

func NewAnalyticsJob(as service.AnalyticsService) *AnalyticsJob {
	return &AnalyticsJob{as: as}
}

func (j *AnalyticsJob) Run() {
	if _, err := j.as.CollectEngagement(context.Background()); err != nil {
		slog.Error("analytics collection failed", "error", err)
	}
}
