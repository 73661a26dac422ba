package transfer

import mbi "google.golang.org/api/mybusinessbusinessinformation/v1"

type BusinessAccount struct {
	Name              string `json:"name"`
	AccountName       string `json:"accountName"`
	Type              string `json:"type"`
	Role              string `json:"role,omitempty"`
	VerificationState string `json:"verificationState,omitempty"`
	VettedState       string `json:"vettedState,omitempty"`
}

type LocationProfile struct {
	Description  string  `json:"description,omitempty"`
	MapsURI      string  `json:"mapsUri,omitempty"`
	NewReviewURI string  `json:"newReviewUri,omitempty"`
	PlaceID      string  `json:"placeId,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
}

type BusinessLocation struct {
	Name              string           `json:"name"`
	Title             string           `json:"title"`
	Address           string           `json:"address"`
	PrimaryPhone      string           `json:"primaryPhone,omitempty"`
	WebsiteURI        string           `json:"websiteUri,omitempty"`
	PrimaryCategory   string           `json:"primaryCategory,omitempty"`
	ParsedHours       string           `json:"parsedHours"`
	ParsedServiceArea string           `json:"parsedServiceArea"`
	Profile           *LocationProfile `json:"profile"`
	ProfileImageURI   *string          `json:"profileImageUri"`
	Rating            *float64         `json:"rating"`
	ReviewCount       *int             `json:"reviewCount"`
}

type Reviewer struct {
	DisplayName     string `json:"displayName"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
	IsAnonymous     bool   `json:"isAnonymous,omitempty"`
}

type ReviewReply struct {
	Comment    string `json:"comment"`
	UpdateTime string `json:"updateTime,omitempty"`
}

type Review struct {
	Name          string       `json:"name"`
	ReviewID      string       `json:"reviewId"`
	Reviewer      Reviewer     `json:"reviewer"`
	StarRating    string       `json:"starRating"`
	Comment       string       `json:"comment,omitempty"`
	CreateTime    string       `json:"createTime"`
	UpdateTime    string       `json:"updateTime,omitempty"`
	ReviewReply   *ReviewReply `json:"reviewReply,omitempty"`
	LocationName  string       `json:"locationName"`
	LocationTitle string       `json:"locationTitle"`
}

type ReviewList struct {
	Reviews          []Review `json:"reviews"`
	AverageRating    float64  `json:"averageRating"`
	TotalReviewCount int      `json:"totalReviewCount"`
	NextPageToken    string   `json:"nextPageToken,omitempty"`
}

type CallToAction struct {
	ActionType string `json:"actionType"`
	URL        string `json:"url,omitempty"`
}

type PostMedia struct {
	Name        string `json:"name,omitempty"`
	MediaFormat string `json:"mediaFormat"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	GoogleURL   string `json:"googleUrl,omitempty"`
}

type LocalPost struct {
	Name          string        `json:"name,omitempty"`
	LanguageCode  string        `json:"languageCode"`
	Summary       string        `json:"summary"`
	TopicType     string        `json:"topicType"`
	State         string        `json:"state,omitempty"`
	SearchURL     string        `json:"searchUrl,omitempty"`
	CreateTime    string        `json:"createTime,omitempty"`
	UpdateTime    string        `json:"updateTime,omitempty"`
	CallToAction  *CallToAction `json:"callToAction,omitempty"`
	Media         []PostMedia   `json:"media,omitempty"`
	LocationName  string        `json:"locationName,omitempty"`
	LocationTitle string        `json:"locationTitle,omitempty"`
}

type LocalPostList struct {
	LocalPosts    []LocalPost `json:"localPosts"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

type LocationAssociation struct {
	Category string `json:"category,omitempty"`
}

type MediaItem struct {
	Name                string              `json:"name"`
	MediaFormat         string              `json:"mediaFormat"`
	LocationAssociation LocationAssociation `json:"locationAssociation"`
	GoogleURL           string              `json:"googleUrl,omitempty"`
	ThumbnailURL        string              `json:"thumbnailUrl,omitempty"`
	SourceURL           string              `json:"sourceUrl,omitempty"`
}

type MediaList struct {
	MediaItems          []MediaItem `json:"mediaItems"`
	TotalMediaItemCount int         `json:"totalMediaItemCount"`
}

type Insights struct {
	TotalLocations int      `json:"totalLocations"`
	TotalReviews   int      `json:"totalReviews"`
	TotalPosts     int      `json:"totalPosts"`
	AverageRating  float64  `json:"averageRating"`
	PostTypes      []string `json:"postTypes"`
	Languages      []string `json:"languages"`
	MediaCount     int      `json:"mediaCount"`
}

type BusinessProfileData struct {
	Account   BusinessAccount    `json:"account"`
	Locations []BusinessLocation `json:"locations"`
	Reviews   []Review           `json:"reviews"`
	Posts     []LocalPost        `json:"posts"`
	Insights  Insights           `json:"insights"`
}

type CreatePostRequest struct {
	Message          string   `json:"message"`
	PostType         string   `json:"postType"`
	CallToActionType string   `json:"callToActionType"`
	CallToActionURL  string   `json:"callToActionUrl"`
	MediaURLs        []string `json:"mediaUrls"`
}

type ReviewReplyRequest struct {
	ReviewName string `json:"reviewName"`
	Comment    string `json:"comment"`
}

// UpdateLocationRequest carries the location fields to patch. Nil or empty
// fields are left out of the update mask.
type UpdateLocationRequest struct {
	Title             string                   `json:"title"`
	PrimaryPhone      string                   `json:"primaryPhone"`
	PhoneNumbers      *mbi.PhoneNumbers        `json:"phoneNumbers"`
	WebsiteURI        string                   `json:"websiteUri"`
	Description       string                   `json:"description"`
	StorefrontAddress *mbi.PostalAddress       `json:"storefrontAddress"`
	RegularHours      *mbi.BusinessHours       `json:"regularHours"`
	SpecialHours      *mbi.SpecialHours        `json:"specialHours"`
	ServiceArea       *mbi.ServiceAreaBusiness `json:"serviceArea"`
	Categories        *mbi.Categories          `json:"categories"`
	Labels            []string                 `json:"labels"`
}

type GoogleProfile struct {
	Type     string            `json:"type"`
	Accounts []BusinessAccount `json:"accounts,omitempty"`
	Profile  *GoogleUserInfo   `json:"profile,omitempty"`
}

type Capabilities struct {
	AccountAccess  bool              `json:"accountAccess"`
	LocationAccess bool              `json:"locationAccess"`
	ReviewAccess   bool              `json:"reviewAccess"`
	PostAccess     bool              `json:"postAccess"`
	Accounts       []BusinessAccount `json:"accounts"`
	Locations      []string          `json:"locations"`
	Errors         []string          `json:"errors"`
	Warnings       []string          `json:"warnings"`
}
