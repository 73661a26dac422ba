package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maheshrc27/selfpost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleServer(t *testing.T, mux *http.ServeMux) (*httptest.Server, GoogleBusinessClient) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewGoogleBusinessClient(srv.Client(), GoogleClientOptions{
		AccountsEndpoint: srv.URL,
		InfoEndpoint:     srv.URL,
		ReviewsEndpoint:  srv.URL + "/v4",
		UserInfoEndpoint: srv.URL,
	})
	return srv, client
}

func TestGoogleClientListAccounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer AT", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accounts":[{"name":"accounts/1","accountName":"Acme","type":"LOCATION_GROUP","role":"OWNER"}]}`))
	})
	_, client := googleServer(t, mux)

	accounts, err := client.ListAccounts(context.Background(), "AT")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, transfer.BusinessAccount{
		Name:        "accounts/1",
		AccountName: "Acme",
		Type:        "LOCATION_GROUP",
		Role:        "OWNER",
	}, accounts[0])
}

func TestGoogleClientListReviews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/accounts/1/locations/2/reviews", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer AT", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reviews":[{"name":"accounts/1/locations/2/reviews/r1","starRating":"FIVE","reviewer":{"displayName":"Bo"}}],"averageRating":5,"totalReviewCount":1}`))
	})
	_, client := googleServer(t, mux)

	list, err := client.ListReviews(context.Background(), "AT", "accounts/1/locations/2")
	require.NoError(t, err)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, "Bo", list.Reviews[0].Reviewer.DisplayName)
	assert.Equal(t, 5.0, list.AverageRating)
	assert.Equal(t, 1, list.TotalReviewCount)
}

func TestGoogleClientReplyToReview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/accounts/1/locations/2/reviews/r1/reply", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body transfer.ReviewReply
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Thanks!", body.Comment)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"comment":"Thanks!","updateTime":"2024-01-01T00:00:00Z"}`))
	})
	_, client := googleServer(t, mux)

	reply, err := client.ReplyToReview(context.Background(), "AT", "accounts/1/locations/2/reviews/r1", "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, "Thanks!", reply.Comment)
	assert.Equal(t, "2024-01-01T00:00:00Z", reply.UpdateTime)
}

func TestGoogleClientSurfacesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/accounts/1/locations/2/localPosts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	})
	_, client := googleServer(t, mux)

	_, err := client.ListLocalPosts(context.Background(), "AT", "accounts/1/locations/2")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestResourceNameHelpers(t *testing.T) {
	assert.Equal(t, "accounts/1/locations/2", v4Parent("accounts/1", "locations/2"))
	assert.Equal(t, "accounts/9/locations/2", v4Parent("accounts/1", "accounts/9/locations/2"))
	assert.Equal(t, "locations/2", locationOnly("accounts/1/locations/2"))
	assert.Equal(t, "locations/2", locationOnly("locations/2"))
	assert.Equal(t, "accounts/1/locations/2", unescapeName("accounts%2F1%2Flocations%2F2"))

	account, ok := accountFromLocation("accounts/1/locations/2")
	assert.True(t, ok)
	assert.Equal(t, "accounts/1", account)
	_, ok = accountFromLocation("locations/2")
	assert.False(t, ok)
}
