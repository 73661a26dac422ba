package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// openTestDB starts a disposable Postgres and applies the schema. The test is
// skipped when Docker is not reachable.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("selfpost"),
		postgres.WithUsername("selfpost"),
		postgres.WithPassword("selfpost"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	// Idempotent.
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestRepositoriesWithPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cipher := utils.NewTokenCipher("test-secret")

	users := NewUserRepository(db)
	profiles := NewSocialProfileRepository(db, cipher)
	posts := NewPostRepository(db)
	mappings := NewPostSocialMappingRepository(db)
	analytics := NewAnalyticsRepository(db)
	txr := NewTxRunner(db)

	userID, err := users.Create(ctx, nil, &models.User{Email: "a@b.com", GoogleID: "g1"})
	require.NoError(t, err)

	t.Run("user lookup", func(t *testing.T) {
		user, exists, err := users.GetByEmail(ctx, nil, "a@b.com")
		require.NoError(t, err)
		require.True(t, exists)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "g1", user.GoogleID)
		assert.Empty(t, user.Name)

		_, exists, err = users.GetByEmail(ctx, nil, "missing@b.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	var profileID uuid.UUID
	data := models.ProfileData{
		ID:     "g1",
		Emails: []models.ProfileValue{{Value: "a@b.com"}},
		Pages:  []models.PageRef{{ID: "p1", Name: "Cafe"}},
	}

	t.Run("profile tokens are encrypted and profile data round trips", func(t *testing.T) {
		profileID, err = profiles.Create(ctx, nil, &models.SocialProfile{
			UserID:         userID,
			Platform:       models.PlatformGoogle,
			PlatformUserID: "g1",
			AccessToken:    "AT",
			RefreshToken:   "RT",
			ProfileData:    data,
			IsActive:       true,
		})
		require.NoError(t, err)

		var rawAccess string
		require.NoError(t, db.QueryRowContext(ctx, `SELECT access_token FROM social_profiles WHERE id = $1`, profileID).Scan(&rawAccess))
		assert.NotEqual(t, "AT", rawAccess)

		sp, err := profiles.GetActive(ctx, userID, models.PlatformGoogle)
		require.NoError(t, err)
		require.NotNil(t, sp)
		assert.Equal(t, "AT", sp.AccessToken)
		assert.Equal(t, "RT", sp.RefreshToken)
		assert.Equal(t, data, sp.ProfileData)
		assert.Nil(t, sp.TokenExpiresAt)
	})

	t.Run("locked update inside a transaction", func(t *testing.T) {
		err := txr.WithTx(ctx, func(tx *sql.Tx) error {
			sp, err := profiles.GetByUserAndPlatform(ctx, tx, userID, models.PlatformGoogle)
			if err != nil {
				return err
			}
			sp.SetTokens(models.MergeTokens(sp.Tokens(), models.TokenSet{AccessToken: "AT2"}))
			return profiles.Update(ctx, tx, sp)
		})
		require.NoError(t, err)

		sp, err := profiles.GetByID(ctx, profileID)
		require.NoError(t, err)
		assert.Equal(t, "AT2", sp.AccessToken)
		assert.Equal(t, "RT", sp.RefreshToken)
	})

	t.Run("set tokens keeps absent values", func(t *testing.T) {
		expiry := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
		require.NoError(t, profiles.SetTokens(ctx, profileID, models.TokenSet{AccessToken: "AT3", ExpiresAt: &expiry}))

		sp, err := profiles.GetByID(ctx, profileID)
		require.NoError(t, err)
		assert.Equal(t, "AT3", sp.AccessToken)
		assert.Equal(t, "RT", sp.RefreshToken)
		require.NotNil(t, sp.TokenExpiresAt)
		assert.True(t, expiry.Equal(*sp.TokenExpiresAt))

		expiring, err := profiles.ListExpiring(ctx, models.PlatformGoogle, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, expiring, 1)
		assert.Equal(t, profileID, expiring[0].ID)
	})

	t.Run("posts mappings and analytics", func(t *testing.T) {
		postID, err := posts.Create(ctx, nil, &models.Post{
			UserID:    userID,
			Title:     "Hello",
			Content:   "World",
			MediaURLs: []string{"https://cdn/a.png", "https://cdn/b.png"},
			Status:    models.PostStatusDraft,
		})
		require.NoError(t, err)

		post, err := posts.GetByID(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, post.MediaURLs)
		assert.Nil(t, post.ScheduledAt)

		owned, err := posts.CheckByUserID(ctx, postID, userID)
		require.NoError(t, err)
		assert.True(t, owned)

		mappingID, err := mappings.Create(ctx, nil, &models.PostSocialMapping{PostID: postID, SocialProfileID: profileID})
		require.NoError(t, err)
		require.NoError(t, mappings.MarkPublished(ctx, mappingID, "ext-1", time.Now()))

		published, err := mappings.ListPublishedByPlatform(ctx, models.PlatformGoogle, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, "ext-1", published[0].ExternalPostID)

		_, err = analytics.Create(ctx, &models.Analytics{
			PostID:          postID,
			SocialProfileID: profileID,
			Platform:        models.PlatformGoogle,
			LikesCount:      3,
			EngagementRate:  12.5,
			RecordedAt:      time.Now(),
		})
		require.NoError(t, err)

		rows, err := analytics.ListByPostID(ctx, postID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 12.5, rows[0].EngagementRate)

		require.NoError(t, posts.Remove(ctx, postID))
		gone, err := posts.GetByID(ctx, postID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestGetByUserAndPlatformSerializesFirstConnect(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	profiles := NewSocialProfileRepository(db, utils.NewTokenCipher("test-secret"))

	userID, err := users.Create(ctx, nil, &models.User{Email: "race@b.com"})
	require.NoError(t, err)

	first, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer first.Rollback()
	existing, err := profiles.GetByUserAndPlatform(ctx, first, userID, models.PlatformGoogle)
	require.NoError(t, err)
	require.Nil(t, existing)

	type lookup struct {
		tx  *sql.Tx
		sp  *models.SocialProfile
		err error
	}
	done := make(chan lookup, 1)
	go func() {
		second, err := db.BeginTx(ctx, nil)
		if err != nil {
			done <- lookup{err: err}
			return
		}
		sp, err := profiles.GetByUserAndPlatform(ctx, second, userID, models.PlatformGoogle)
		done <- lookup{tx: second, sp: sp, err: err}
	}()

	select {
	case <-done:
		t.Fatal("second lookup did not wait for the first transaction")
	case <-time.After(200 * time.Millisecond):
	}

	createdID, err := profiles.Create(ctx, first, &models.SocialProfile{
		UserID:         userID,
		Platform:       models.PlatformGoogle,
		PlatformUserID: "g-race",
		AccessToken:    "AT",
		IsActive:       true,
	})
	require.NoError(t, err)
	require.NoError(t, first.Commit())

	res := <-done
	require.NoError(t, res.err)
	defer res.tx.Rollback()
	require.NotNil(t, res.sp)
	assert.Equal(t, createdID, res.sp.ID)

	_, err = profiles.Create(ctx, nil, &models.SocialProfile{
		UserID:         userID,
		Platform:       models.PlatformGoogle,
		PlatformUserID: "g-race",
		IsActive:       true,
	})
	assert.Error(t, err)
}
