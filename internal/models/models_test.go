package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTokensKeepsStoredRefreshToken(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := TokenSet{AccessToken: "old-at", RefreshToken: "old-rt", ExpiresAt: &expiry}

	merged := MergeTokens(stored, TokenSet{AccessToken: "new-at"})

	assert.Equal(t, "new-at", merged.AccessToken)
	assert.Equal(t, "old-rt", merged.RefreshToken)
	assert.Equal(t, &expiry, merged.ExpiresAt)
}

func TestMergeTokensIncomingWins(t *testing.T) {
	oldExpiry := time.Now()
	newExpiry := oldExpiry.Add(time.Hour)
	stored := TokenSet{AccessToken: "old-at", RefreshToken: "old-rt", ExpiresAt: &oldExpiry}

	merged := MergeTokens(stored, TokenSet{AccessToken: "new-at", RefreshToken: "new-rt", ExpiresAt: &newExpiry})

	assert.Equal(t, TokenSet{AccessToken: "new-at", RefreshToken: "new-rt", ExpiresAt: &newExpiry}, merged)
}

func TestMergeTokensEmptyStored(t *testing.T) {
	merged := MergeTokens(TokenSet{}, TokenSet{AccessToken: "at"})
	assert.Equal(t, "at", merged.AccessToken)
	assert.Empty(t, merged.RefreshToken)
	assert.Nil(t, merged.ExpiresAt)
}

func TestProfileDataRoundTrip(t *testing.T) {
	in := ProfileData{
		ID:                "g1",
		Provider:          PlatformGoogle,
		DisplayName:       "Ada",
		Emails:            []ProfileValue{{Value: "a@b.com", Type: "account"}},
		Photos:            []ProfileValue{{Value: "https://img/1.png"}},
		IsBusinessProfile: true,
		Pages:             []PageRef{{ID: "p1", Name: "Page", Category: "Cafe"}},
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out ProfileData
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	var fromString ProfileData
	require.NoError(t, fromString.Scan(string(v.([]byte))))
	assert.Equal(t, in, fromString)
}

func TestProfileDataScanNullAndEmpty(t *testing.T) {
	d := ProfileData{ID: "x"}
	require.NoError(t, d.Scan(nil))
	assert.Equal(t, ProfileData{}, d)

	d = ProfileData{ID: "x"}
	require.NoError(t, d.Scan([]byte("{}")))
	assert.Equal(t, ProfileData{}, d)

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan([]byte("{")))
}

func TestProfileDataPrimaryEmail(t *testing.T) {
	d := ProfileData{Emails: []ProfileValue{{Value: ""}, {Value: "a@b.com"}}}
	assert.Equal(t, "a@b.com", d.PrimaryEmail())
	assert.Equal(t, "", ProfileData{}.PrimaryEmail())
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 10.0, EngagementRate(5, 3, 2, 100))
	assert.Equal(t, 300.0, EngagementRate(1, 1, 1, 0))
	assert.Equal(t, 999.99, EngagementRate(5000, 0, 0, 1))
}
