package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, a *models.Analytics) (uuid.UUID, error)
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.Analytics, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Create(ctx context.Context, a *models.Analytics) (uuid.UUID, error) {
	query := `
		INSERT INTO analytics (
			id,
			post_id,
			social_profile_id,
			platform,
			likes_count,
			shares_count,
			comments_count,
			views_count,
			engagement_rate,
			recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		a.ID,
		a.PostID,
		a.SocialProfileID,
		a.Platform,
		a.LikesCount,
		a.SharesCount,
		a.CommentsCount,
		a.ViewsCount,
		a.EngagementRate,
		a.RecordedAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *analyticsRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.Analytics, error) {
	query := `
		SELECT id, post_id, social_profile_id, platform, likes_count, shares_count, comments_count,
			views_count, engagement_rate, recorded_at, created_at
		FROM analytics
		WHERE post_id = $1
		ORDER BY recorded_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var out []*models.Analytics
	for rows.Next() {
		var a models.Analytics
		err := rows.Scan(&a.ID, &a.PostID, &a.SocialProfileID, &a.Platform, &a.LikesCount, &a.SharesCount,
			&a.CommentsCount, &a.ViewsCount, &a.EngagementRate, &a.RecordedAt, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		out = append(out, &a)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return out, nil
}
