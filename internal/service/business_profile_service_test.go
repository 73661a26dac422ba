package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mbi "google.golang.org/api/mybusinessbusinessinformation/v1"
)

type fakeGoogle struct {
	mu sync.Mutex

	accounts    []transfer.BusinessAccount
	accountsErr error
	locations   []*mbi.Location
	locationErr error
	details     map[string]*mbi.Location
	reviews     map[string]*transfer.ReviewList
	posts       map[string]*transfer.LocalPostList
	media       map[string]*transfer.MediaList

	createdParent string
	created       transfer.LocalPost
	patchMask     string
	tokens        []string
}

func (f *fakeGoogle) seen(token string) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
}

func (f *fakeGoogle) ListAccounts(ctx context.Context, accessToken string) ([]transfer.BusinessAccount, error) {
	f.seen(accessToken)
	return f.accounts, f.accountsErr
}

func (f *fakeGoogle) ListLocations(ctx context.Context, accessToken, account string) ([]*mbi.Location, error) {
	return f.locations, f.locationErr
}

func (f *fakeGoogle) GetLocation(ctx context.Context, accessToken, name string) (*mbi.Location, error) {
	if loc, ok := f.details[name]; ok {
		return loc, nil
	}
	return nil, &APIError{StatusCode: 404, Body: "not found"}
}

func (f *fakeGoogle) UpdateLocation(ctx context.Context, accessToken, name string, loc *mbi.Location, updateMask string) (*mbi.Location, error) {
	f.mu.Lock()
	f.patchMask = updateMask
	f.mu.Unlock()
	loc.Name = name
	return loc, nil
}

func (f *fakeGoogle) ListReviews(ctx context.Context, accessToken, parent string) (*transfer.ReviewList, error) {
	if r, ok := f.reviews[parent]; ok {
		return r, nil
	}
	return nil, &APIError{StatusCode: 500, Body: "backend error"}
}

func (f *fakeGoogle) ListLocalPosts(ctx context.Context, accessToken, parent string) (*transfer.LocalPostList, error) {
	if p, ok := f.posts[parent]; ok {
		return p, nil
	}
	return nil, &APIError{StatusCode: 500, Body: "backend error"}
}

func (f *fakeGoogle) ListMedia(ctx context.Context, accessToken, parent string) (*transfer.MediaList, error) {
	if m, ok := f.media[parent]; ok {
		return m, nil
	}
	return nil, &APIError{StatusCode: 403, Body: "forbidden"}
}

func (f *fakeGoogle) CreateLocalPost(ctx context.Context, accessToken, parent string, post transfer.LocalPost) (*transfer.LocalPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdParent = parent
	f.created = post
	post.Name = parent + "/localPosts/1"
	return &post, nil
}

func (f *fakeGoogle) ReplyToReview(ctx context.Context, accessToken, reviewName, comment string) (*transfer.ReviewReply, error) {
	return &transfer.ReviewReply{Comment: comment}, nil
}

func (f *fakeGoogle) UserInfo(ctx context.Context, accessToken string) (*transfer.GoogleUserInfo, error) {
	return &transfer.GoogleUserInfo{ID: "g1", Email: "a@b.com", Name: "Ada"}, nil
}

func sampleGoogle() *fakeGoogle {
	return &fakeGoogle{
		accounts: []transfer.BusinessAccount{{Name: "accounts/1", AccountName: "Acme"}},
		locations: []*mbi.Location{
			{Name: "locations/1", Title: "Acme Downtown", PhoneNumbers: &mbi.PhoneNumbers{PrimaryPhone: "555-0100"}},
			{Name: "locations/2", Title: "Acme Uptown"},
		},
		details: map[string]*mbi.Location{
			"locations/1": {
				Name:     "locations/1",
				Title:    "Acme Downtown",
				Profile:  &mbi.Profile{Description: "Coffee"},
				Metadata: &mbi.Metadata{MapsUri: "https://maps/1", PlaceId: "place-1"},
			},
		},
		reviews: map[string]*transfer.ReviewList{
			"accounts/1/locations/1": {
				Reviews: []transfer.Review{
					{Name: "accounts/1/locations/1/reviews/a", StarRating: "FIVE"},
					{Name: "accounts/1/locations/1/reviews/b", StarRating: "FOUR"},
				},
				AverageRating:    4.5,
				TotalReviewCount: 2,
			},
		},
		posts: map[string]*transfer.LocalPostList{
			"accounts/1/locations/1": {LocalPosts: []transfer.LocalPost{
				{Name: "p1", TopicType: "STANDARD", LanguageCode: "en-US", Media: []transfer.PostMedia{{MediaFormat: "PHOTO"}}},
			}},
			"accounts/1/locations/2": {LocalPosts: []transfer.LocalPost{
				{Name: "p2", TopicType: "EVENT", LanguageCode: "en"},
			}},
		},
		media: map[string]*transfer.MediaList{
			"accounts/1/locations/1": {MediaItems: []transfer.MediaItem{
				{MediaFormat: "PHOTO", GoogleURL: "https://img/cover", LocationAssociation: transfer.LocationAssociation{Category: "COVER"}},
				{MediaFormat: "PHOTO", GoogleURL: "https://img/logo", LocationAssociation: transfer.LocationAssociation{Category: "LOGO"}},
			}},
		},
	}
}

func newTestBusinessService(t *testing.T, google *fakeGoogle, refresh string) (BusinessProfileService, *fakeTokens) {
	t.Helper()
	users, profiles := newFakeUsers(), &fakeProfiles{}
	seedProfile(users, profiles, "a@b.com", models.PlatformGoogle, models.TokenSet{AccessToken: "old", RefreshToken: refresh})

	tokens := &fakeTokens{token: "fresh-token"}
	cs := NewConnectionService(fakeTx{}, users, profiles)
	return NewBusinessProfileService(cs, tokens, google), tokens
}

func TestGetBusinessProfileDataPartialResult(t *testing.T) {
	google := sampleGoogle()
	bp, tokens := newTestBusinessService(t, google, "RT")

	data, err := bp.GetBusinessProfileData(context.Background(), "a@b.com", "accounts%2F1")
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, "Acme", data.Account.AccountName)

	require.Len(t, data.Locations, 2)
	downtown, uptown := data.Locations[0], data.Locations[1]

	assert.Equal(t, "Acme Downtown", downtown.Title)
	assert.Equal(t, "555-0100", downtown.PrimaryPhone)
	require.NotNil(t, downtown.Profile)
	assert.Equal(t, "Coffee", downtown.Profile.Description)
	assert.Equal(t, "https://maps/1", downtown.Profile.MapsURI)
	require.NotNil(t, downtown.ProfileImageURI)
	assert.Equal(t, "https://img/logo", *downtown.ProfileImageURI)
	require.NotNil(t, downtown.Rating)
	assert.Equal(t, 4.5, *downtown.Rating)
	assert.Equal(t, 2, *downtown.ReviewCount)

	assert.Nil(t, uptown.Profile)
	assert.Nil(t, uptown.ProfileImageURI)
	assert.Nil(t, uptown.Rating)
	assert.Nil(t, uptown.ReviewCount)
	assert.Equal(t, "Hours not available", uptown.ParsedHours)
	assert.Equal(t, "Address not available", uptown.Address)

	require.Len(t, data.Reviews, 2)
	for _, r := range data.Reviews {
		assert.Equal(t, "locations/1", r.LocationName)
		assert.Equal(t, "Acme Downtown", r.LocationTitle)
	}
	require.Len(t, data.Posts, 2)
	assert.Equal(t, "Acme Downtown", data.Posts[0].LocationTitle)
	assert.Equal(t, "Acme Uptown", data.Posts[1].LocationTitle)

	assert.Equal(t, transfer.Insights{
		TotalLocations: 2,
		TotalReviews:   2,
		TotalPosts:     2,
		AverageRating:  4.5,
		PostTypes:      []string{"STANDARD", "EVENT"},
		Languages:      []string{"en-US", "en"},
		MediaCount:     1,
	}, data.Insights)

	for _, tok := range google.tokens {
		assert.Equal(t, "fresh-token", tok)
	}
}

func TestGetBusinessProfileDataEmptyCollections(t *testing.T) {
	google := sampleGoogle()
	google.locations = nil
	bp, _ := newTestBusinessService(t, google, "RT")

	data, err := bp.GetBusinessProfileData(context.Background(), "a@b.com", "accounts/1")
	require.NoError(t, err)
	assert.NotNil(t, data.Locations)
	assert.NotNil(t, data.Reviews)
	assert.NotNil(t, data.Posts)
	assert.Empty(t, data.Reviews)
	assert.Equal(t, 0, data.Insights.TotalLocations)
	assert.Equal(t, 0.0, data.Insights.AverageRating)
}

func TestGetBusinessProfileDataFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no profile", func(t *testing.T) {
		bp := NewBusinessProfileService(NewConnectionService(fakeTx{}, newFakeUsers(), &fakeProfiles{}), &fakeTokens{}, sampleGoogle())
		_, err := bp.GetBusinessProfileData(ctx, "a@b.com", "accounts/1")
		assert.ErrorIs(t, err, ErrNoActiveProfile)
	})

	t.Run("no refresh token", func(t *testing.T) {
		bp, tokens := newTestBusinessService(t, sampleGoogle(), "")
		_, err := bp.GetBusinessProfileData(ctx, "a@b.com", "accounts/1")
		assert.ErrorIs(t, err, ErrNoRefreshToken)
		assert.Equal(t, 0, tokens.calls)
	})

	t.Run("refresh fails", func(t *testing.T) {
		bp, tokens := newTestBusinessService(t, sampleGoogle(), "RT")
		tokens.err = errors.New("failed to refresh access token: invalid_grant")
		_, err := bp.GetBusinessProfileData(ctx, "a@b.com", "accounts/1")
		assert.EqualError(t, err, "failed to refresh access token: invalid_grant")
	})

	t.Run("no accounts", func(t *testing.T) {
		google := sampleGoogle()
		google.accounts = nil
		bp, _ := newTestBusinessService(t, google, "RT")
		_, err := bp.GetBusinessProfileData(ctx, "a@b.com", "accounts/1")
		assert.ErrorIs(t, err, ErrNoBusinessAccounts)
	})

	t.Run("location listing fails", func(t *testing.T) {
		google := sampleGoogle()
		google.locationErr = &APIError{StatusCode: 403, Body: "denied"}
		bp, _ := newTestBusinessService(t, google, "RT")
		_, err := bp.GetBusinessProfileData(ctx, "a@b.com", "accounts/1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.StatusCode)
	})
}

func TestComputeInsightsRoundsAverage(t *testing.T) {
	r1, r2 := 4.0, 4.25
	c1, c2 := 3, 5
	locations := []transfer.BusinessLocation{
		{Rating: &r1, ReviewCount: &c1},
		{Rating: &r2, ReviewCount: &c2},
		{},
	}

	insights := computeInsights(locations, nil, nil)
	assert.Equal(t, 4.1, insights.AverageRating)
	assert.Equal(t, 8, insights.TotalReviews)
	assert.Equal(t, 3, insights.TotalLocations)
	assert.Empty(t, insights.PostTypes)
}

func TestGetGoogleProfile(t *testing.T) {
	google := sampleGoogle()
	bp, _ := newTestBusinessService(t, google, "RT")

	profile, err := bp.GetGoogleProfile(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "business", profile.Type)
	assert.Len(t, profile.Accounts, 1)

	google.accounts = nil
	profile, err = bp.GetGoogleProfile(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "personal", profile.Type)
	assert.Equal(t, "Ada", profile.Profile.Name)
}

func TestCreateBusinessPost(t *testing.T) {
	google := sampleGoogle()
	bp, _ := newTestBusinessService(t, google, "RT")
	ctx := context.Background()

	_, err := bp.CreateBusinessPost(ctx, "a@b.com", "locations/1", transfer.CreatePostRequest{})
	assert.Error(t, err)

	post, err := bp.CreateBusinessPost(ctx, "a@b.com", "locations%2F1", transfer.CreatePostRequest{
		Message:          "Grand opening",
		CallToActionType: "LEARN_MORE",
		CallToActionURL:  "https://acme.test",
		MediaURLs:        []string{"https://cdn/1.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "accounts/1/locations/1/localPosts/1", post.Name)
	assert.Equal(t, "accounts/1/locations/1", google.createdParent)
	assert.Equal(t, "STANDARD", google.created.TopicType)
	assert.Equal(t, "en-US", google.created.LanguageCode)
	require.NotNil(t, google.created.CallToAction)
	assert.Equal(t, "LEARN_MORE", google.created.CallToAction.ActionType)
	require.Len(t, google.created.Media, 1)
	assert.Equal(t, "https://cdn/1.png", google.created.Media[0].SourceURL)

	_, err = bp.CreateBusinessPost(ctx, "a@b.com", "accounts/9/locations/3", transfer.CreatePostRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "accounts/9/locations/3", google.createdParent)
}

func TestUpdateBusinessInfo(t *testing.T) {
	google := sampleGoogle()
	bp, _ := newTestBusinessService(t, google, "RT")
	ctx := context.Background()

	_, err := bp.UpdateBusinessInfo(ctx, "a@b.com", "locations/1", transfer.UpdateLocationRequest{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	loc, err := bp.UpdateBusinessInfo(ctx, "a@b.com", "accounts/1/locations/1", transfer.UpdateLocationRequest{
		Title:       "Acme Central",
		Description: "Espresso",
	})
	require.NoError(t, err)
	assert.Equal(t, "title,profile", google.patchMask)
	assert.Equal(t, "locations/1", loc.Name)
	assert.Equal(t, "Acme Central", loc.Title)
	assert.Equal(t, "Espresso", loc.Profile.Description)
}

func TestUpdateBusinessInfoStructuredFields(t *testing.T) {
	google := sampleGoogle()
	bp, _ := newTestBusinessService(t, google, "RT")

	body := `{
		"regularHours": {"periods": [{"openDay": "MONDAY", "openTime": {"hours": 9}, "closeDay": "MONDAY", "closeTime": {"hours": 17}}]},
		"specialHours": {"specialHourPeriods": [{"startDate": {"year": 2024, "month": 12, "day": 25}, "closed": true}]},
		"storefrontAddress": {"addressLines": ["1 Main St"], "locality": "Springfield", "administrativeArea": "IL", "postalCode": "62701", "regionCode": "US"},
		"serviceArea": {"businessType": "CUSTOMER_AND_BUSINESS_LOCATION"},
		"categories": {"primaryCategory": {"name": "categories/gcid:cafe", "displayName": "Cafe"}},
		"labels": ["downtown"],
		"phoneNumbers": {"primaryPhone": "+1 555 0100"}
	}`
	var req transfer.UpdateLocationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	loc, err := bp.UpdateBusinessInfo(context.Background(), "a@b.com", "accounts/1/locations/1", req)
	require.NoError(t, err)
	assert.Equal(t, "storefrontAddress,phoneNumbers,regularHours,specialHours,serviceArea,categories,labels", google.patchMask)
	assert.Equal(t, "1 Main St, Springfield, IL 62701, US", loc.Address)
	assert.Equal(t, "+1 555 0100", loc.PrimaryPhone)
	assert.Equal(t, "Cafe", loc.PrimaryCategory)
	assert.NotEqual(t, "Hours not available", loc.ParsedHours)
}

func TestLocationPatchPrefersPhoneNumbers(t *testing.T) {
	loc, mask := locationPatch(transfer.UpdateLocationRequest{
		PrimaryPhone: "+1 555 0199",
		PhoneNumbers: &mbi.PhoneNumbers{PrimaryPhone: "+1 555 0100"},
		WebsiteURI:   "https://acme.example",
	})
	assert.Equal(t, "phoneNumbers,websiteUri", mask)
	assert.Equal(t, "+1 555 0100", loc.PhoneNumbers.PrimaryPhone)

	_, mask = locationPatch(transfer.UpdateLocationRequest{})
	assert.Empty(t, mask)
}

func TestAPICapabilitiesReport(t *testing.T) {
	google := sampleGoogle()
	bp, _ := newTestBusinessService(t, google, "RT")

	caps, err := bp.TestAPICapabilities(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, caps.AccountAccess)
	assert.True(t, caps.LocationAccess)
	assert.True(t, caps.ReviewAccess)
	assert.True(t, caps.PostAccess)
	assert.Equal(t, []string{"locations/1", "locations/2"}, caps.Locations)
	assert.Empty(t, caps.Errors)

	google.accountsErr = &APIError{StatusCode: 403, Body: "denied"}
	caps, err = bp.TestAPICapabilities(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, caps.AccountAccess)
	assert.Len(t, caps.Errors, 1)
}

func TestDefaultLocation(t *testing.T) {
	bp, _ := newTestBusinessService(t, sampleGoogle(), "RT")

	parent, err := bp.DefaultLocation(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "accounts/1/locations/1", parent)
}

func TestPickProfileImageFallsBackToCover(t *testing.T) {
	items := []transfer.MediaItem{
		{MediaFormat: "VIDEO", GoogleURL: "https://vid", LocationAssociation: transfer.LocationAssociation{Category: "PROFILE"}},
		{MediaFormat: "PHOTO", SourceURL: "https://cover", LocationAssociation: transfer.LocationAssociation{Category: "COVER"}},
	}
	got := pickProfileImage(items)
	require.NotNil(t, got)
	assert.Equal(t, "https://cover", *got)

	assert.Nil(t, pickProfileImage(nil))
}
