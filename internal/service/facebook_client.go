package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/selfpost/internal/transfer"
)

const defaultGraphURL = "https://graph.facebook.com/v18.0"

// GraphError is a non-2xx answer from the Graph API.
type GraphError struct {
	StatusCode int
	Message    string
	Code       int
}

func (e *GraphError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("facebook graph api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("facebook graph api: status %d: %s", e.StatusCode, e.Message)
}

type FacebookClient interface {
	GetMe(ctx context.Context, userToken string) (*transfer.FacebookUser, error)
	GetPages(ctx context.Context, userToken string) ([]transfer.FacebookPage, error)
	PostToPage(ctx context.Context, pageID, pageToken string, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error)
	SchedulePost(ctx context.Context, pageID, pageToken string, post transfer.FacebookPostData, at time.Time) (*transfer.FacebookPostResult, error)
	GetPageInsights(ctx context.Context, pageID, pageToken string, metrics []string) (*transfer.FacebookInsightsResponse, error)
	GetPostEngagement(ctx context.Context, postID, token string) (*transfer.Engagement, error)
	MockMode() bool
}

type FacebookClientOptions struct {
	GraphURL string
	// MockMode fabricates ids for publishing calls instead of hitting the Graph API.
	MockMode bool
	Now      func() time.Time
}

type facebookClient struct {
	http *http.Client
	opts FacebookClientOptions
}

func NewFacebookClient(httpClient *http.Client, opts FacebookClientOptions) FacebookClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: upstreamTimeout}
	}
	if opts.GraphURL == "" {
		opts.GraphURL = defaultGraphURL
	}
	opts.GraphURL = strings.TrimSuffix(opts.GraphURL, "/")
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &facebookClient{http: httpClient, opts: opts}
}

func (c *facebookClient) MockMode() bool {
	return c.opts.MockMode
}

func (c *facebookClient) endpoint(path string, params url.Values) string {
	u := c.opts.GraphURL + "/" + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *facebookClient) do(ctx context.Context, method, endpoint string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build graph request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("facebook graph api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &GraphError{StatusCode: resp.StatusCode}
		var fbErr transfer.FacebookErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&fbErr); err == nil {
			gerr.Message = fbErr.Error.Message
			gerr.Code = fbErr.Error.Code
		}
		slog.Warn("graph api call failed", "status", resp.StatusCode, "message", gerr.Message)
		return gerr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func (c *facebookClient) GetMe(ctx context.Context, userToken string) (*transfer.FacebookUser, error) {
	params := url.Values{}
	params.Set("fields", "id,name,email,picture")
	params.Set("access_token", userToken)

	var me transfer.FacebookUser
	if err := c.do(ctx, http.MethodGet, c.endpoint("/me", params), nil, &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, errors.New("facebook graph api: empty profile")
	}
	return &me, nil
}

func (c *facebookClient) GetPages(ctx context.Context, userToken string) ([]transfer.FacebookPage, error) {
	params := url.Values{}
	params.Set("fields", "id,name,access_token,category,picture")
	params.Set("access_token", userToken)

	var resp transfer.FacebookPagesResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/me/accounts", params), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *facebookClient) PostToPage(ctx context.Context, pageID, pageToken string, post transfer.FacebookPostData) (*transfer.FacebookPostResult, error) {
	if post.Message == "" && post.Link == "" {
		return nil, errors.New("post needs a message or a link")
	}

	if c.opts.MockMode {
		id := fmt.Sprintf("%s_%d", pageID, c.opts.Now().UnixMilli())
		slog.Info("mock facebook post", "page_id", pageID, "post_id", id)
		return &transfer.FacebookPostResult{ID: id, Mock: true}, nil
	}

	form := url.Values{}
	form.Set("message", post.Message)
	if post.Link != "" {
		form.Set("link", post.Link)
	}
	form.Set("access_token", pageToken)

	var out transfer.FacebookPostResult
	if err := c.do(ctx, http.MethodPost, c.endpoint("/"+pageID+"/posts", nil), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *facebookClient) SchedulePost(ctx context.Context, pageID, pageToken string, post transfer.FacebookPostData, at time.Time) (*transfer.FacebookPostResult, error) {
	if c.opts.MockMode {
		id := fmt.Sprintf("%s_scheduled_%d", pageID, c.opts.Now().UnixMilli())
		return &transfer.FacebookPostResult{ID: id, Mock: true, ScheduledAt: at.Unix()}, nil
	}

	form := url.Values{}
	form.Set("message", post.Message)
	if post.Link != "" {
		form.Set("link", post.Link)
	}
	form.Set("published", "false")
	form.Set("scheduled_publish_time", strconv.FormatInt(at.Unix(), 10))
	form.Set("access_token", pageToken)

	var out transfer.FacebookPostResult
	if err := c.do(ctx, http.MethodPost, c.endpoint("/"+pageID+"/feed", nil), form, &out); err != nil {
		return nil, err
	}
	out.ScheduledAt = at.Unix()
	return &out, nil
}

func (c *facebookClient) GetPageInsights(ctx context.Context, pageID, pageToken string, metrics []string) (*transfer.FacebookInsightsResponse, error) {
	if len(metrics) == 0 {
		metrics = []string{"page_impressions", "page_post_engagements", "page_fans"}
	}

	if c.opts.MockMode {
		out := &transfer.FacebookInsightsResponse{Mock: true}
		for _, m := range metrics {
			out.Data = append(out.Data, transfer.FacebookInsight{
				Name:   m,
				Period: "day",
				Values: []transfer.FacebookInsightValue{{Value: json.RawMessage("0")}},
			})
		}
		return out, nil
	}

	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))
	params.Set("access_token", pageToken)

	var out transfer.FacebookInsightsResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/"+pageID+"/insights", params), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *facebookClient) GetPostEngagement(ctx context.Context, postID, token string) (*transfer.Engagement, error) {
	if c.opts.MockMode {
		return &transfer.Engagement{}, nil
	}

	params := url.Values{}
	params.Set("fields", "likes.summary(true),comments.summary(true),shares")
	params.Set("access_token", token)

	var stats transfer.FacebookPostStats
	if err := c.do(ctx, http.MethodGet, c.endpoint("/"+postID, params), nil, &stats); err != nil {
		return nil, err
	}
	e := stats.Engagement()
	return &e, nil
}
