package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/pkg/utils"
)

type SocialProfileRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SocialProfile, error)
	// GetByUserAndPlatform returns the most recently updated row for the pair,
	// active or not. Inside a transaction the row is locked until commit.
	GetByUserAndPlatform(ctx context.Context, tx *sql.Tx, userID uuid.UUID, platform string) (*models.SocialProfile, error)
	GetActive(ctx context.Context, userID uuid.UUID, platform string) (*models.SocialProfile, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.SocialProfile, error)
	List(ctx context.Context) ([]*models.SocialProfile, error)
	ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialProfile, error)
	Update(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) error
	SetTokens(ctx context.Context, id uuid.UUID, tokens models.TokenSet) error
}

type socialProfileRepository struct {
	db     *sql.DB
	cipher *utils.TokenCipher
}

func NewSocialProfileRepository(db *sql.DB, cipher *utils.TokenCipher) SocialProfileRepository {
	return &socialProfileRepository{db: db, cipher: cipher}
}

const socialProfileColumns = `id, user_id, platform, platform_user_id, access_token, refresh_token,
	token_expires_at, profile_data, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *socialProfileRepository) scan(row rowScanner) (*models.SocialProfile, error) {
	var sp models.SocialProfile
	var accessToken string
	var refreshToken sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(&sp.ID, &sp.UserID, &sp.Platform, &sp.PlatformUserID, &accessToken, &refreshToken,
		&expiresAt, &sp.ProfileData, &sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if sp.AccessToken, err = r.cipher.Open(accessToken); err != nil {
		return nil, fmt.Errorf("decrypt access token for profile %s: %w", sp.ID, err)
	}
	if sp.RefreshToken, err = r.cipher.Open(refreshToken.String); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for profile %s: %w", sp.ID, err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		sp.TokenExpiresAt = &t
	}
	return &sp, nil
}

func (r *socialProfileRepository) queryOne(ctx context.Context, q querier, query string, args ...interface{}) (*models.SocialProfile, error) {
	sp, err := r.scan(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return sp, nil
}

func (r *socialProfileRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*models.SocialProfile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.SocialProfile
	for rows.Next() {
		sp, err := r.scan(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		profiles = append(profiles, sp)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return profiles, nil
}

func (r *socialProfileRepository) sealTokens(sp *models.SocialProfile) (string, sql.NullString, error) {
	accessToken, err := r.cipher.Seal(sp.AccessToken)
	if err != nil {
		return "", sql.NullString{}, err
	}
	refreshToken, err := r.cipher.Seal(sp.RefreshToken)
	if err != nil {
		return "", sql.NullString{}, err
	}
	return accessToken, sql.NullString{String: refreshToken, Valid: sp.RefreshToken != ""}, nil
}

func (r *socialProfileRepository) Create(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) (uuid.UUID, error) {
	query := `
		INSERT INTO social_profiles (
			id,
			user_id,
			platform,
			platform_user_id,
			access_token,
			refresh_token,
			token_expires_at,
			profile_data,
			is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}

	accessToken, refreshToken, err := r.sealTokens(sp)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = conn(r.db, tx).QueryRowContext(ctx, query,
		sp.ID,
		sp.UserID,
		sp.Platform,
		sp.PlatformUserID,
		accessToken,
		refreshToken,
		sp.TokenExpiresAt,
		sp.ProfileData,
		sp.IsActive,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *socialProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles WHERE id = $1`
	return r.queryOne(ctx, r.db, query, id)
}

// GetByUserAndPlatform returns the most recent profile for the pair. Inside a
// transaction it first locks the owning user row, so concurrent callers for
// the same user queue up even when no profile row exists yet.
func (r *socialProfileRepository) GetByUserAndPlatform(ctx context.Context, tx *sql.Tx, userID uuid.UUID, platform string) (*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles
		WHERE user_id = $1 AND platform = $2
		ORDER BY is_active DESC, updated_at DESC
		LIMIT 1`
	if tx != nil {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR NO KEY UPDATE`, userID).Scan(&locked)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			slog.Info(err.Error())
			return nil, err
		}
		query += ` FOR UPDATE`
	}
	return r.queryOne(ctx, conn(r.db, tx), query, userID, platform)
}

func (r *socialProfileRepository) GetActive(ctx context.Context, userID uuid.UUID, platform string) (*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles
		WHERE user_id = $1 AND platform = $2 AND is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.queryOne(ctx, r.db, query, userID, platform)
}

func (r *socialProfileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles WHERE user_id = $1 ORDER BY created_at`
	return r.queryMany(ctx, query, userID)
}

func (r *socialProfileRepository) List(ctx context.Context) ([]*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles ORDER BY created_at`
	return r.queryMany(ctx, query)
}

// ListExpiring returns active profiles holding a refresh token whose access
// token expires before the given time.
func (r *socialProfileRepository) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialProfile, error) {
	query := `SELECT ` + socialProfileColumns + ` FROM social_profiles
		WHERE platform = $1
		AND is_active = TRUE
		AND refresh_token IS NOT NULL AND refresh_token <> ''
		AND token_expires_at IS NOT NULL AND token_expires_at < $2`
	return r.queryMany(ctx, query, platform, before)
}

func (r *socialProfileRepository) Update(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) error {
	query := `
		UPDATE social_profiles
		SET
			platform_user_id = $2,
			access_token = $3,
			refresh_token = $4,
			token_expires_at = $5,
			profile_data = $6,
			is_active = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	accessToken, refreshToken, err := r.sealTokens(sp)
	if err != nil {
		return err
	}

	result, err := conn(r.db, tx).ExecContext(ctx, query,
		sp.ID, sp.PlatformUserID, accessToken, refreshToken, sp.TokenExpiresAt, sp.ProfileData, sp.IsActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return fmt.Errorf("social profile %s not found", sp.ID)
	}
	return nil
}

// SetTokens applies tokens through models.MergeTokens semantics in SQL:
// empty values leave the stored column untouched.
func (r *socialProfileRepository) SetTokens(ctx context.Context, id uuid.UUID, tokens models.TokenSet) error {
	query := `
		UPDATE social_profiles
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = COALESCE($4, token_expires_at),
			updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`

	accessToken, err := r.cipher.Seal(tokens.AccessToken)
	if err != nil {
		return err
	}
	refreshToken, err := r.cipher.Seal(tokens.RefreshToken)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, id, accessToken, refreshToken, tokens.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
