package transfer

import "encoding/json"

type FacebookPicture struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

type FacebookUser struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Picture FacebookPicture `json:"picture"`
}

type FacebookPage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AccessToken string          `json:"access_token,omitempty"`
	Category    string          `json:"category,omitempty"`
	Picture     FacebookPicture `json:"picture"`
}

type FacebookPagesResponse struct {
	Data []FacebookPage `json:"data"`
}

type FacebookPostData struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

type FacebookPostResult struct {
	ID          string `json:"id"`
	PostID      string `json:"post_id,omitempty"`
	Mock        bool   `json:"mock,omitempty"`
	ScheduledAt int64  `json:"scheduledAt,omitempty"`
}

type FacebookInsightValue struct {
	Value   json.RawMessage `json:"value"`
	EndTime string          `json:"end_time,omitempty"`
}

type FacebookInsight struct {
	Name   string                 `json:"name"`
	Period string                 `json:"period"`
	Title  string                 `json:"title,omitempty"`
	Values []FacebookInsightValue `json:"values"`
}

type FacebookInsightsResponse struct {
	Data []FacebookInsight `json:"data"`
	Mock bool              `json:"mock,omitempty"`
}

type facebookSummary struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

// FacebookPostStats is the raw /{post}?fields=likes.summary(true),comments.summary(true),shares payload.
type FacebookPostStats struct {
	ID       string          `json:"id"`
	Likes    facebookSummary `json:"likes"`
	Comments facebookSummary `json:"comments"`
	Shares   struct {
		Count int `json:"count"`
	} `json:"shares"`
}

type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Views    int `json:"views"`
}

func (s FacebookPostStats) Engagement() Engagement {
	return Engagement{
		Likes:    s.Likes.Summary.TotalCount,
		Comments: s.Comments.Summary.TotalCount,
		Shares:   s.Shares.Count,
	}
}

type FacebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
