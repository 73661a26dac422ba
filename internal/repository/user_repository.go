package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, bool, error)
	GetByEmail(ctx context.Context, tx *sql.Tx, email string) (*models.User, bool, error)
	Create(ctx context.Context, tx *sql.Tx, user *models.User) (uuid.UUID, error)
	Update(ctx context.Context, tx *sql.Tx, user *models.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, COALESCE(name, ''), COALESCE(avatar_url, ''), COALESCE(google_id, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, bool, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.GoogleID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &user, true, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *sql.Tx, email string) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	return scanUser(conn(r.db, tx).QueryRowContext(ctx, query, email))
}

func (r *userRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (uuid.UUID, error) {
	query := `
		INSERT INTO users (id, email, name, avatar_url, google_id)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	var id uuid.UUID
	err := conn(r.db, tx).QueryRowContext(ctx, query, user.ID, user.Email, user.Name, user.AvatarURL, user.GoogleID).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	return id, nil
}

func (r *userRepository) Update(ctx context.Context, tx *sql.Tx, user *models.User) error {
	query := `
		UPDATE users
		SET name = NULLIF($1, ''),
			avatar_url = NULLIF($2, ''),
			google_id = NULLIF($3, ''),
			updated_at = NOW()
		WHERE id = $4
	`
	_, err := conn(r.db, tx).ExecContext(ctx, query, user.Name, user.AvatarURL, user.GoogleID, user.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
