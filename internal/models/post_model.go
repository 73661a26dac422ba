package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"userId"`
	Title       string     `db:"title" json:"title"`
	Content     string     `db:"content" json:"content"`
	MediaURLs   []string   `db:"media_urls" json:"mediaUrls"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduledAt"`
	PublishedAt *time.Time `db:"published_at" json:"publishedAt"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// PostSocialMapping records the delivery of one post to one connected profile.
type PostSocialMapping struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PostID          uuid.UUID  `db:"post_id" json:"postId"`
	SocialProfileID uuid.UUID  `db:"social_profile_id" json:"socialProfileId"`
	ExternalPostID  string     `db:"external_post_id" json:"externalPostId"`
	PublishedAt     *time.Time `db:"published_at" json:"publishedAt"`
	Status          string     `db:"status" json:"status"`
	ErrorMessage    string     `db:"error_message" json:"errorMessage"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	MappingStatusPending   = "pending"
	MappingStatusPublished = "published"
	MappingStatusFailed    = "failed"
)
