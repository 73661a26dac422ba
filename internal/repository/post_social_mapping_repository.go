package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
)

type PostSocialMappingRepository interface {
	Create(ctx context.Context, tx *sql.Tx, m *models.PostSocialMapping) (uuid.UUID, error)
	ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostSocialMapping, error)
	ListPublishedByPlatform(ctx context.Context, platform string, since time.Time) ([]*models.PostSocialMapping, error)
	MarkPublished(ctx context.Context, id uuid.UUID, externalPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

type postSocialMappingRepository struct {
	db *sql.DB
}

func NewPostSocialMappingRepository(db *sql.DB) PostSocialMappingRepository {
	return &postSocialMappingRepository{db: db}
}

const mappingColumns = `m.id, m.post_id, m.social_profile_id, m.external_post_id, m.published_at, m.status, m.error_message, m.created_at, m.updated_at`

func (r *postSocialMappingRepository) Create(ctx context.Context, tx *sql.Tx, m *models.PostSocialMapping) (uuid.UUID, error) {
	query := `
		INSERT INTO post_social_mappings (id, post_id, social_profile_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = models.MappingStatusPending
	}

	var id uuid.UUID
	err := conn(r.db, tx).QueryRowContext(ctx, query, m.ID, m.PostID, m.SocialProfileID, m.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *postSocialMappingRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.PostSocialMapping, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.PostSocialMapping
	for rows.Next() {
		var m models.PostSocialMapping
		var publishedAt sql.NullTime
		err := rows.Scan(&m.ID, &m.PostID, &m.SocialProfileID, &m.ExternalPostID, &publishedAt,
			&m.Status, &m.ErrorMessage, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if publishedAt.Valid {
			m.PublishedAt = &publishedAt.Time
		}
		mappings = append(mappings, &m)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return mappings, nil
}

func (r *postSocialMappingRepository) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostSocialMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM post_social_mappings m WHERE m.post_id = $1 ORDER BY m.created_at`
	return r.list(ctx, query, postID)
}

func (r *postSocialMappingRepository) ListPublishedByPlatform(ctx context.Context, platform string, since time.Time) ([]*models.PostSocialMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM post_social_mappings m
		JOIN social_profiles sp ON sp.id = m.social_profile_id
		WHERE sp.platform = $1
		AND sp.is_active = TRUE
		AND m.status = $2
		AND m.external_post_id <> ''
		AND m.published_at >= $3`
	return r.list(ctx, query, platform, models.MappingStatusPublished, since)
}

func (r *postSocialMappingRepository) MarkPublished(ctx context.Context, id uuid.UUID, externalPostID string, publishedAt time.Time) error {
	query := `
		UPDATE post_social_mappings
		SET external_post_id = $2, published_at = $3, status = $4, error_message = '', updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, externalPostID, publishedAt, models.MappingStatusPublished)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postSocialMappingRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `UPDATE post_social_mappings SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, models.MappingStatusFailed, errorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
