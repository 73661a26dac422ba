package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Analytics struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PostID          uuid.UUID `db:"post_id" json:"postId"`
	SocialProfileID uuid.UUID `db:"social_profile_id" json:"socialProfileId"`
	Platform        string    `db:"platform" json:"platform"`
	LikesCount      int       `db:"likes_count" json:"likesCount"`
	SharesCount     int       `db:"shares_count" json:"sharesCount"`
	CommentsCount   int       `db:"comments_count" json:"commentsCount"`
	ViewsCount      int       `db:"views_count" json:"viewsCount"`
	EngagementRate  float64   `db:"engagement_rate" json:"engagementRate"`
	RecordedAt      time.Time `db:"recorded_at" json:"recordedAt"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

const maxEngagementRate = 999.99

// EngagementRate is interactions per view as a percentage, capped to fit numeric(5,2).
func EngagementRate(likes, comments, shares, views int) float64 {
	if views < 1 {
		views = 1
	}
	rate := float64(likes+comments+shares) / float64(views) * 100
	if rate > maxEngagementRate {
		return maxEngagementRate
	}
	return math.Round(rate*100) / 100
}
