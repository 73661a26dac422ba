package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/maheshrc27/selfpost/internal/transfer"
	"golang.org/x/oauth2"
	mbam "google.golang.org/api/mybusinessaccountmanagement/v1"
	mbi "google.golang.org/api/mybusinessbusinessinformation/v1"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const (
	locationListMask   = "name,title,storefrontAddress,phoneNumbers,websiteUri,regularHours,categories,serviceArea"
	locationDetailMask = "name,title,storefrontAddress,phoneNumbers,websiteUri,regularHours,categories,serviceArea,profile,metadata,latlng"
	locationUpdateMask = "title,storefrontAddress,phoneNumbers,websiteUri,regularHours,specialHours,serviceArea,categories,labels,profile"
	defaultReviewsAPI  = "https://mybusiness.googleapis.com/v4/"
)

// GoogleBusinessClient talks to the Business Profile APIs on behalf of one
// access token per call.
type GoogleBusinessClient interface {
	ListAccounts(ctx context.Context, accessToken string) ([]transfer.BusinessAccount, error)
	ListLocations(ctx context.Context, accessToken, account string) ([]*mbi.Location, error)
	GetLocation(ctx context.Context, accessToken, name string) (*mbi.Location, error)
	UpdateLocation(ctx context.Context, accessToken, name string, loc *mbi.Location, updateMask string) (*mbi.Location, error)
	ListReviews(ctx context.Context, accessToken, parent string) (*transfer.ReviewList, error)
	ListLocalPosts(ctx context.Context, accessToken, parent string) (*transfer.LocalPostList, error)
	ListMedia(ctx context.Context, accessToken, parent string) (*transfer.MediaList, error)
	CreateLocalPost(ctx context.Context, accessToken, parent string, post transfer.LocalPost) (*transfer.LocalPost, error)
	ReplyToReview(ctx context.Context, accessToken, reviewName, comment string) (*transfer.ReviewReply, error)
	UserInfo(ctx context.Context, accessToken string) (*transfer.GoogleUserInfo, error)
}

// GoogleClientOptions overrides API hosts. Empty endpoints use Google's defaults.
type GoogleClientOptions struct {
	AccountsEndpoint string
	InfoEndpoint     string
	ReviewsEndpoint  string
	UserInfoEndpoint string
}

type googleBusinessClient struct {
	base *http.Client
	opts GoogleClientOptions
}

func NewGoogleBusinessClient(base *http.Client, opts GoogleClientOptions) GoogleBusinessClient {
	if base == nil {
		base = &http.Client{Timeout: upstreamTimeout}
	}
	if opts.ReviewsEndpoint == "" {
		opts.ReviewsEndpoint = defaultReviewsAPI
	}
	opts.ReviewsEndpoint = withTrailingSlash(opts.ReviewsEndpoint)
	return &googleBusinessClient{base: base, opts: opts}
}

func withTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// authed wraps the base client so every request carries the bearer token.
func (c *googleBusinessClient) authed(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	client.Timeout = c.base.Timeout
	return client
}

func (c *googleBusinessClient) clientOptions(ctx context.Context, accessToken, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(c.authed(ctx, accessToken))}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(withTrailingSlash(endpoint)))
	}
	return opts
}

func (c *googleBusinessClient) accounts(ctx context.Context, accessToken string) (*mbam.Service, error) {
	return mbam.NewService(ctx, c.clientOptions(ctx, accessToken, c.opts.AccountsEndpoint)...)
}

func (c *googleBusinessClient) info(ctx context.Context, accessToken string) (*mbi.Service, error) {
	return mbi.NewService(ctx, c.clientOptions(ctx, accessToken, c.opts.InfoEndpoint)...)
}

func (c *googleBusinessClient) ListAccounts(ctx context.Context, accessToken string) ([]transfer.BusinessAccount, error) {
	svc, err := c.accounts(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("account management client: %w", err)
	}

	var accounts []transfer.BusinessAccount
	err = svc.Accounts.List().PageSize(20).Pages(ctx, func(resp *mbam.ListAccountsResponse) error {
		for _, a := range resp.Accounts {
			accounts = append(accounts, transfer.BusinessAccount{
				Name:              a.Name,
				AccountName:       a.AccountName,
				Type:              a.Type,
				Role:              a.Role,
				VerificationState: a.VerificationState,
				VettedState:       a.VettedState,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (c *googleBusinessClient) ListLocations(ctx context.Context, accessToken, account string) ([]*mbi.Location, error) {
	svc, err := c.info(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("business information client: %w", err)
	}

	var locations []*mbi.Location
	err = svc.Accounts.Locations.List(account).ReadMask(locationListMask).PageSize(100).Pages(ctx, func(resp *mbi.ListLocationsResponse) error {
		locations = append(locations, resp.Locations...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list locations for %s: %w", account, err)
	}
	return locations, nil
}

func (c *googleBusinessClient) GetLocation(ctx context.Context, accessToken, name string) (*mbi.Location, error) {
	svc, err := c.info(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("business information client: %w", err)
	}

	loc, err := svc.Locations.Get(name).ReadMask(locationDetailMask).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get location %s: %w", name, err)
	}
	return loc, nil
}

func (c *googleBusinessClient) UpdateLocation(ctx context.Context, accessToken, name string, loc *mbi.Location, updateMask string) (*mbi.Location, error) {
	svc, err := c.info(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("business information client: %w", err)
	}

	updated, err := svc.Locations.Patch(name, loc).UpdateMask(updateMask).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("update location %s: %w", name, err)
	}
	return updated, nil
}

func (c *googleBusinessClient) v4URL(resource, suffix string) string {
	return c.opts.ReviewsEndpoint + strings.TrimPrefix(resource, "/") + suffix
}

func (c *googleBusinessClient) ListReviews(ctx context.Context, accessToken, parent string) (*transfer.ReviewList, error) {
	var out transfer.ReviewList
	if err := doJSON(ctx, c.authed(ctx, accessToken), http.MethodGet, c.v4URL(parent, "/reviews"), nil, &out); err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", parent, err)
	}
	return &out, nil
}

func (c *googleBusinessClient) ListLocalPosts(ctx context.Context, accessToken, parent string) (*transfer.LocalPostList, error) {
	var out transfer.LocalPostList
	if err := doJSON(ctx, c.authed(ctx, accessToken), http.MethodGet, c.v4URL(parent, "/localPosts"), nil, &out); err != nil {
		return nil, fmt.Errorf("list local posts for %s: %w", parent, err)
	}
	return &out, nil
}

func (c *googleBusinessClient) ListMedia(ctx context.Context, accessToken, parent string) (*transfer.MediaList, error) {
	var out transfer.MediaList
	if err := doJSON(ctx, c.authed(ctx, accessToken), http.MethodGet, c.v4URL(parent, "/media"), nil, &out); err != nil {
		return nil, fmt.Errorf("list media for %s: %w", parent, err)
	}
	return &out, nil
}

func (c *googleBusinessClient) CreateLocalPost(ctx context.Context, accessToken, parent string, post transfer.LocalPost) (*transfer.LocalPost, error) {
	var out transfer.LocalPost
	if err := doJSON(ctx, c.authed(ctx, accessToken), http.MethodPost, c.v4URL(parent, "/localPosts"), post, &out); err != nil {
		return nil, fmt.Errorf("create local post for %s: %w", parent, err)
	}
	return &out, nil
}

func (c *googleBusinessClient) ReplyToReview(ctx context.Context, accessToken, reviewName, comment string) (*transfer.ReviewReply, error) {
	var out transfer.ReviewReply
	body := transfer.ReviewReply{Comment: comment}
	if err := doJSON(ctx, c.authed(ctx, accessToken), http.MethodPut, c.v4URL(reviewName, "/reply"), body, &out); err != nil {
		return nil, fmt.Errorf("reply to review %s: %w", reviewName, err)
	}
	return &out, nil
}

func (c *googleBusinessClient) UserInfo(ctx context.Context, accessToken string) (*transfer.GoogleUserInfo, error) {
	svc, err := googleoauth.NewService(ctx, c.clientOptions(ctx, accessToken, c.opts.UserInfoEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	return &transfer.GoogleUserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// v4Parent builds the legacy "accounts/{a}/locations/{l}" resource name from a
// Business Information location name ("locations/{l}").
func v4Parent(account, location string) string {
	if strings.HasPrefix(location, "accounts/") {
		return location
	}
	return account + "/" + location
}

// accountFromLocation extracts "accounts/{a}" from a full location name.
func accountFromLocation(location string) (string, bool) {
	parts := strings.Split(location, "/")
	if len(parts) >= 4 && parts[0] == "accounts" && parts[2] == "locations" {
		return parts[0] + "/" + parts[1], true
	}
	return "", false
}

// locationOnly strips an account prefix, leaving "locations/{l}".
func locationOnly(location string) string {
	if i := strings.Index(location, "locations/"); i > 0 {
		return location[i:]
	}
	return location
}

func unescapeName(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
