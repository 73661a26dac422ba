package transfer

import (
	"time"

	"github.com/maheshrc27/selfpost/internal/models"
)

type PostCreation struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	MediaURLs   []string   `json:"mediaUrls"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	ProfileIDs  []string   `json:"profileIds"`
}

type PostDetails struct {
	models.Post
	Mappings  []*models.PostSocialMapping `json:"mappings"`
	Analytics []*models.Analytics         `json:"analytics,omitempty"`
}

type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}
