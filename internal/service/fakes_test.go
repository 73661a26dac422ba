package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, tx *sql.Tx, email string) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUsers) Create(ctx context.Context, tx *sql.Tx, user *models.User) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return user.ID, nil
}

func (f *fakeUsers) Update(ctx context.Context, tx *sql.Tx, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles []*models.SocialProfile
}

func (f *fakeProfiles) Create(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	sp.CreatedAt = time.Now()
	sp.UpdatedAt = sp.CreatedAt
	cp := *sp
	f.profiles = append(f.profiles, &cp)
	return sp.ID, nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) GetByUserAndPlatform(ctx context.Context, tx *sql.Tx, userID uuid.UUID, platform string) (*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var match []*models.SocialProfile
	for _, p := range f.profiles {
		if p.UserID == userID && p.Platform == platform {
			match = append(match, p)
		}
	}
	if len(match) == 0 {
		return nil, nil
	}
	sort.SliceStable(match, func(i, j int) bool {
		if match[i].IsActive != match[j].IsActive {
			return match[i].IsActive
		}
		return match[i].UpdatedAt.After(match[j].UpdatedAt)
	})
	cp := *match[0]
	return &cp, nil
}

func (f *fakeProfiles) GetActive(ctx context.Context, userID uuid.UUID, platform string) (*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID && p.Platform == platform && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SocialProfile
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProfiles) List(ctx context.Context) ([]*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.SocialProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProfiles) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*models.SocialProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SocialProfile
	for _, p := range f.profiles {
		if p.Platform == platform && p.IsActive && p.TokenExpiresAt != nil && p.TokenExpiresAt.Before(before) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProfiles) Update(ctx context.Context, tx *sql.Tx, sp *models.SocialProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.profiles {
		if p.ID == sp.ID {
			cp := *sp
			cp.UpdatedAt = time.Now()
			f.profiles[i] = &cp
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeProfiles) SetTokens(ctx context.Context, id uuid.UUID, tokens models.TokenSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			p.SetTokens(models.MergeTokens(p.Tokens(), tokens))
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeProfiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[uuid.UUID]*models.Post{}}
}

func (f *fakePosts) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	cp := *post
	cp.ID = id
	f.posts[id] = &cp
	return id, nil
}

func (f *fakePosts) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePosts) UpdateStatus(ctx context.Context, id uuid.UUID, status string, publishedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	p.PublishedAt = publishedAt
	return nil
}

func (f *fakePosts) CheckByUserID(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	return ok && p.UserID == userID, nil
}

func (f *fakePosts) Remove(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

type fakeMappings struct {
	mu       sync.Mutex
	mappings []*models.PostSocialMapping
}

func (f *fakeMappings) Create(ctx context.Context, tx *sql.Tx, m *models.PostSocialMapping) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.New()
	cp := *m
	f.mappings = append(f.mappings, &cp)
	return m.ID, nil
}

func (f *fakeMappings) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.PostSocialMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PostSocialMapping
	for _, m := range f.mappings {
		if m.PostID == postID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMappings) ListPublishedByPlatform(ctx context.Context, platform string, since time.Time) ([]*models.PostSocialMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PostSocialMapping
	for _, m := range f.mappings {
		if m.Status == models.MappingStatusPublished && m.ExternalPostID != "" {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMappings) MarkPublished(ctx context.Context, id uuid.UUID, externalPostID string, publishedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.mappings {
		if m.ID == id {
			m.Status = models.MappingStatusPublished
			m.ExternalPostID = externalPostID
			m.PublishedAt = &publishedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMappings) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.mappings {
		if m.ID == id {
			m.Status = models.MappingStatusFailed
			m.ErrorMessage = errorMessage
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeMappings) byProfile(profileID uuid.UUID) *models.PostSocialMapping {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.mappings {
		if m.SocialProfileID == profileID {
			cp := *m
			return &cp
		}
	}
	return nil
}

type fakeAnalytics struct {
	mu   sync.Mutex
	rows []*models.Analytics
}

func (f *fakeAnalytics) Create(ctx context.Context, a *models.Analytics) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	cp := *a
	f.rows = append(f.rows, &cp)
	return a.ID, nil
}

func (f *fakeAnalytics) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.Analytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Analytics
	for _, a := range f.rows {
		if a.PostID == postID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeTokens hands back a fixed access token, or err when set.
type fakeTokens struct {
	TokenService
	token string
	err   error
	calls int
}

func (f *fakeTokens) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeScheduler struct {
	scheduled map[uuid.UUID]time.Duration
	err       error
}

func (f *fakeScheduler) SchedulePublish(postID uuid.UUID, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.scheduled == nil {
		f.scheduled = map[uuid.UUID]time.Duration{}
	}
	f.scheduled[postID] = delay
	return nil
}

// seedProfile stores a user and one active profile for them.
func seedProfile(users *fakeUsers, profiles *fakeProfiles, email, platform string, tokens models.TokenSet) (*models.User, *models.SocialProfile) {
	ctx := context.Background()
	user := &models.User{Email: email}
	users.Create(ctx, nil, user)

	sp := &models.SocialProfile{
		UserID:         user.ID,
		Platform:       platform,
		PlatformUserID: "platform-" + email,
		IsActive:       true,
	}
	sp.SetTokens(tokens)
	profiles.Create(ctx, nil, sp)
	return user, sp
}
