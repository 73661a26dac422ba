package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/maheshrc27/selfpost/internal/transfer"
	mbi "google.golang.org/api/mybusinessbusinessinformation/v1"
)

const defaultLocationConcurrency = 4

type BusinessProfileService interface {
	GetBusinessAccounts(ctx context.Context, email string) ([]transfer.BusinessAccount, error)
	// GetBusinessProfileData aggregates account, locations, reviews and posts.
	// Only the account and location listings are fatal; every per-location
	// call degrades to empty on failure.
	GetBusinessProfileData(ctx context.Context, email, accountName string) (*transfer.BusinessProfileData, error)
	GetGoogleProfile(ctx context.Context, email string) (*transfer.GoogleProfile, error)
	GetLocationDetails(ctx context.Context, email, locationName string) (*transfer.BusinessLocation, error)
	CreateBusinessPost(ctx context.Context, email, locationName string, req transfer.CreatePostRequest) (*transfer.LocalPost, error)
	ReplyToReview(ctx context.Context, email, reviewName, comment string) (*transfer.ReviewReply, error)
	UpdateBusinessInfo(ctx context.Context, email, locationName string, req transfer.UpdateLocationRequest) (*transfer.BusinessLocation, error)
	TestAPICapabilities(ctx context.Context, email string) (*transfer.Capabilities, error)
	// DefaultLocation names the first location of the first account as a v4 parent.
	DefaultLocation(ctx context.Context, email string) (string, error)
}

type businessProfileService struct {
	cs          ConnectionService
	ts          TokenService
	gc          GoogleBusinessClient
	concurrency int
}

func NewBusinessProfileService(cs ConnectionService, ts TokenService, gc GoogleBusinessClient) BusinessProfileService {
	return &businessProfileService{
		cs:          cs,
		ts:          ts,
		gc:          gc,
		concurrency: defaultLocationConcurrency,
	}
}

// accessToken resolves the stored Google profile and refreshes its token.
func (s *businessProfileService) accessToken(ctx context.Context, email string) (string, error) {
	profile, err := s.cs.GetActiveGoogleProfile(ctx, email)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", ErrNoActiveProfile
	}
	if profile.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}
	return s.ts.RefreshAccessToken(ctx, profile.RefreshToken)
}

func (s *businessProfileService) GetBusinessAccounts(ctx context.Context, email string) ([]transfer.BusinessAccount, error) {
	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []transfer.BusinessAccount{}
	}
	return accounts, nil
}

func pickAccount(accounts []transfer.BusinessAccount, name string) transfer.BusinessAccount {
	for _, a := range accounts {
		if a.Name == name {
			return a
		}
	}
	return accounts[0]
}

func (s *businessProfileService) GetBusinessProfileData(ctx context.Context, email, accountName string) (*transfer.BusinessProfileData, error) {
	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNoBusinessAccounts
	}
	account := pickAccount(accounts, unescapeName(accountName))

	raw, err := s.gc.ListLocations(ctx, token, account.Name)
	if err != nil {
		return nil, err
	}

	locations := make([]transfer.BusinessLocation, len(raw))
	for i, loc := range raw {
		locations[i] = mapLocation(loc)
	}

	type activity struct {
		reviews []transfer.Review
		posts   []transfer.LocalPost
	}
	perLocation := make([]activity, len(locations))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.concurrency)

	for i := range locations {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			loc := &locations[i]
			parent := v4Parent(account.Name, loc.Name)
			s.enrichLocation(ctx, token, loc)
			s.attachProfileImage(ctx, token, parent, loc)
			perLocation[i].reviews = s.fetchReviews(ctx, token, parent, loc)
			perLocation[i].posts = s.fetchPosts(ctx, token, parent, loc)
		}(i)
	}
	wg.Wait()

	data := &transfer.BusinessProfileData{
		Account:   account,
		Locations: locations,
		Reviews:   []transfer.Review{},
		Posts:     []transfer.LocalPost{},
	}
	for _, a := range perLocation {
		data.Reviews = append(data.Reviews, a.reviews...)
		data.Posts = append(data.Posts, a.posts...)
	}
	data.Insights = computeInsights(data.Locations, data.Reviews, data.Posts)

	slog.Info("business profile aggregated", "email", email, "account", account.Name,
		"locations", len(data.Locations), "reviews", len(data.Reviews), "posts", len(data.Posts))
	return data, nil
}

func mapLocation(loc *mbi.Location) transfer.BusinessLocation {
	out := transfer.BusinessLocation{
		Name:              loc.Name,
		Title:             loc.Title,
		Address:           formatAddress(loc.StorefrontAddress),
		WebsiteURI:        loc.WebsiteUri,
		ParsedHours:       ParseBusinessHours(loc.RegularHours),
		ParsedServiceArea: ParseServiceArea(loc.ServiceArea),
	}
	if loc.PhoneNumbers != nil {
		out.PrimaryPhone = loc.PhoneNumbers.PrimaryPhone
	}
	if loc.Categories != nil && loc.Categories.PrimaryCategory != nil {
		out.PrimaryCategory = loc.Categories.PrimaryCategory.DisplayName
	}
	return out
}

func applyDetails(out *transfer.BusinessLocation, loc *mbi.Location) {
	profile := &transfer.LocationProfile{}
	if loc.Profile != nil {
		profile.Description = loc.Profile.Description
	}
	if loc.Metadata != nil {
		profile.MapsURI = loc.Metadata.MapsUri
		profile.NewReviewURI = loc.Metadata.NewReviewUri
		profile.PlaceID = loc.Metadata.PlaceId
	}
	if loc.Latlng != nil {
		profile.Latitude = loc.Latlng.Latitude
		profile.Longitude = loc.Latlng.Longitude
	}
	out.Profile = profile

	if loc.Title != "" {
		out.Title = loc.Title
	}
	if loc.StorefrontAddress != nil {
		out.Address = formatAddress(loc.StorefrontAddress)
	}
	if loc.RegularHours != nil {
		out.ParsedHours = ParseBusinessHours(loc.RegularHours)
	}
}

func (s *businessProfileService) enrichLocation(ctx context.Context, token string, loc *transfer.BusinessLocation) {
	details, err := s.gc.GetLocation(ctx, token, locationOnly(loc.Name))
	if err != nil {
		slog.Warn("location details unavailable", "location", loc.Name, "error", err)
		return
	}
	applyDetails(loc, details)
}

// pickProfileImage prefers a PROFILE or LOGO photo and falls back to COVER.
func pickProfileImage(items []transfer.MediaItem) *string {
	var cover *string
	for _, m := range items {
		if m.MediaFormat != "PHOTO" {
			continue
		}
		u := m.GoogleURL
		if u == "" {
			u = m.SourceURL
		}
		if u == "" {
			continue
		}
		switch m.LocationAssociation.Category {
		case "PROFILE", "LOGO":
			return stringPtr(u)
		case "COVER":
			if cover == nil {
				cover = stringPtr(u)
			}
		}
	}
	return cover
}

func (s *businessProfileService) attachProfileImage(ctx context.Context, token, parent string, loc *transfer.BusinessLocation) {
	media, err := s.gc.ListMedia(ctx, token, parent)
	if err != nil {
		slog.Warn("location media unavailable", "location", loc.Name, "error", err)
		return
	}
	loc.ProfileImageURI = pickProfileImage(media.MediaItems)
}

func (s *businessProfileService) fetchReviews(ctx context.Context, token, parent string, loc *transfer.BusinessLocation) []transfer.Review {
	list, err := s.gc.ListReviews(ctx, token, parent)
	if err != nil {
		slog.Warn("reviews unavailable", "location", loc.Name, "error", err)
		return nil
	}

	if list.TotalReviewCount > 0 {
		rating := list.AverageRating
		count := list.TotalReviewCount
		loc.Rating = &rating
		loc.ReviewCount = &count
	}

	reviews := make([]transfer.Review, 0, len(list.Reviews))
	for _, r := range list.Reviews {
		r.LocationName = loc.Name
		r.LocationTitle = loc.Title
		reviews = append(reviews, r)
	}
	return reviews
}

func (s *businessProfileService) fetchPosts(ctx context.Context, token, parent string, loc *transfer.BusinessLocation) []transfer.LocalPost {
	list, err := s.gc.ListLocalPosts(ctx, token, parent)
	if err != nil {
		slog.Warn("local posts unavailable", "location", loc.Name, "error", err)
		return nil
	}

	posts := make([]transfer.LocalPost, 0, len(list.LocalPosts))
	for _, p := range list.LocalPosts {
		p.LocationName = loc.Name
		p.LocationTitle = loc.Title
		posts = append(posts, p)
	}
	return posts
}

func computeInsights(locations []transfer.BusinessLocation, reviews []transfer.Review, posts []transfer.LocalPost) transfer.Insights {
	insights := transfer.Insights{
		TotalLocations: len(locations),
		TotalPosts:     len(posts),
		PostTypes:      []string{},
		Languages:      []string{},
	}

	var ratingSum float64
	var rated, counted int
	for _, loc := range locations {
		if loc.ReviewCount != nil {
			counted += *loc.ReviewCount
		}
		if loc.Rating != nil && loc.ReviewCount != nil && *loc.ReviewCount > 0 {
			ratingSum += *loc.Rating
			rated++
		}
	}
	if rated > 0 {
		insights.AverageRating = math.Round(ratingSum/float64(rated)*10) / 10
	}

	insights.TotalReviews = counted
	if len(reviews) > counted {
		insights.TotalReviews = len(reviews)
	}

	seenTypes := map[string]bool{}
	seenLangs := map[string]bool{}
	for _, p := range posts {
		if p.TopicType != "" && !seenTypes[p.TopicType] {
			seenTypes[p.TopicType] = true
			insights.PostTypes = append(insights.PostTypes, p.TopicType)
		}
		if p.LanguageCode != "" && !seenLangs[p.LanguageCode] {
			seenLangs[p.LanguageCode] = true
			insights.Languages = append(insights.Languages, p.LanguageCode)
		}
		insights.MediaCount += len(p.Media)
	}
	return insights
}

func (s *businessProfileService) GetGoogleProfile(ctx context.Context, email string) (*transfer.GoogleProfile, error) {
	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		slog.Warn("business accounts unavailable, falling back to userinfo", "email", email, "error", err)
	}
	if len(accounts) > 0 {
		return &transfer.GoogleProfile{Type: "business", Accounts: accounts}, nil
	}

	info, err := s.gc.UserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return &transfer.GoogleProfile{Type: "personal", Profile: info}, nil
}

func (s *businessProfileService) GetLocationDetails(ctx context.Context, email, locationName string) (*transfer.BusinessLocation, error) {
	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	loc, err := s.gc.GetLocation(ctx, token, locationOnly(unescapeName(locationName)))
	if err != nil {
		return nil, err
	}

	out := mapLocation(loc)
	applyDetails(&out, loc)
	return &out, nil
}

// localPostParent turns a location name into the legacy parent resource,
// borrowing the first account when the name carries none.
func (s *businessProfileService) localPostParent(ctx context.Context, token, locationName string) (string, error) {
	if _, ok := accountFromLocation(locationName); ok {
		return locationName, nil
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", ErrNoBusinessAccounts
	}
	return v4Parent(accounts[0].Name, locationOnly(locationName)), nil
}

func (s *businessProfileService) DefaultLocation(ctx context.Context, email string) (string, error) {
	token, err := s.accessToken(ctx, email)
	if err != nil {
		return "", err
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", ErrNoBusinessAccounts
	}

	locations, err := s.gc.ListLocations(ctx, token, accounts[0].Name)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", errors.New("no business locations found")
	}
	return v4Parent(accounts[0].Name, locations[0].Name), nil
}

func buildLocalPost(req transfer.CreatePostRequest) transfer.LocalPost {
	post := transfer.LocalPost{
		TopicType:    req.PostType,
		LanguageCode: "en-US",
		Summary:      req.Message,
	}
	if post.TopicType == "" {
		post.TopicType = "STANDARD"
	}
	if req.CallToActionType != "" {
		post.CallToAction = &transfer.CallToAction{ActionType: req.CallToActionType, URL: req.CallToActionURL}
	}
	for _, u := range req.MediaURLs {
		if u != "" {
			post.Media = append(post.Media, transfer.PostMedia{MediaFormat: "PHOTO", SourceURL: u})
		}
	}
	return post
}

func (s *businessProfileService) CreateBusinessPost(ctx context.Context, email, locationName string, req transfer.CreatePostRequest) (*transfer.LocalPost, error) {
	if req.Message == "" {
		return nil, errors.New("post message cannot be empty")
	}

	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	parent, err := s.localPostParent(ctx, token, unescapeName(locationName))
	if err != nil {
		return nil, err
	}

	created, err := s.gc.CreateLocalPost(ctx, token, parent, buildLocalPost(req))
	if err != nil {
		slog.Error("create business post failed", "location", parent, "error", err)
		return nil, err
	}
	return created, nil
}

func (s *businessProfileService) ReplyToReview(ctx context.Context, email, reviewName, comment string) (*transfer.ReviewReply, error) {
	if reviewName == "" || comment == "" {
		return nil, errors.New("review name and comment are required")
	}

	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.gc.ReplyToReview(ctx, token, unescapeName(reviewName), comment)
}

func (s *businessProfileService) UpdateBusinessInfo(ctx context.Context, email, locationName string, req transfer.UpdateLocationRequest) (*transfer.BusinessLocation, error) {
	loc, mask := locationPatch(req)
	if mask == "" {
		return nil, ErrNothingToUpdate
	}

	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	updated, err := s.gc.UpdateLocation(ctx, token, locationOnly(unescapeName(locationName)), loc, mask)
	if err != nil {
		return nil, err
	}

	out := mapLocation(updated)
	applyDetails(&out, updated)
	return &out, nil
}

// locationPatch builds the patch body and its update mask. Mask fields
// follow the order of locationUpdateMask.
func locationPatch(req transfer.UpdateLocationRequest) (*mbi.Location, string) {
	loc := &mbi.Location{
		Title:             req.Title,
		WebsiteUri:        req.WebsiteURI,
		StorefrontAddress: req.StorefrontAddress,
		PhoneNumbers:      req.PhoneNumbers,
		RegularHours:      req.RegularHours,
		SpecialHours:      req.SpecialHours,
		ServiceArea:       req.ServiceArea,
		Categories:        req.Categories,
		Labels:            req.Labels,
	}
	if loc.PhoneNumbers == nil && req.PrimaryPhone != "" {
		loc.PhoneNumbers = &mbi.PhoneNumbers{PrimaryPhone: req.PrimaryPhone}
	}
	if req.Description != "" {
		loc.Profile = &mbi.Profile{Description: req.Description}
	}

	present := map[string]bool{
		"title":             loc.Title != "",
		"storefrontAddress": loc.StorefrontAddress != nil,
		"phoneNumbers":      loc.PhoneNumbers != nil,
		"websiteUri":        loc.WebsiteUri != "",
		"regularHours":      loc.RegularHours != nil,
		"specialHours":      loc.SpecialHours != nil,
		"serviceArea":       loc.ServiceArea != nil,
		"categories":        loc.Categories != nil,
		"labels":            req.Labels != nil,
		"profile":           loc.Profile != nil,
	}

	var fields []string
	for _, f := range strings.Split(locationUpdateMask, ",") {
		if present[f] {
			fields = append(fields, f)
		}
	}
	return loc, strings.Join(fields, ",")
}

func (s *businessProfileService) TestAPICapabilities(ctx context.Context, email string) (*transfer.Capabilities, error) {
	caps := &transfer.Capabilities{
		Accounts:  []transfer.BusinessAccount{},
		Locations: []string{},
		Errors:    []string{},
		Warnings:  []string{},
	}

	token, err := s.accessToken(ctx, email)
	if err != nil {
		return nil, err
	}

	accounts, err := s.gc.ListAccounts(ctx, token)
	if err != nil {
		caps.Errors = append(caps.Errors, fmt.Sprintf("account access: %v", err))
		return caps, nil
	}
	caps.AccountAccess = true
	caps.Accounts = accounts
	if len(accounts) == 0 {
		caps.Warnings = append(caps.Warnings, "No business accounts found for this Google user")
		return caps, nil
	}

	locations, err := s.gc.ListLocations(ctx, token, accounts[0].Name)
	if err != nil {
		caps.Errors = append(caps.Errors, fmt.Sprintf("location access: %v", err))
		return caps, nil
	}
	caps.LocationAccess = true
	for _, l := range locations {
		caps.Locations = append(caps.Locations, l.Name)
	}
	if len(locations) == 0 {
		caps.Warnings = append(caps.Warnings, "No locations found for "+accounts[0].Name)
		return caps, nil
	}

	parent := v4Parent(accounts[0].Name, locations[0].Name)
	if _, err := s.gc.ListReviews(ctx, token, parent); err != nil {
		caps.Errors = append(caps.Errors, fmt.Sprintf("review access: %v", err))
	} else {
		caps.ReviewAccess = true
	}
	if _, err := s.gc.ListLocalPosts(ctx, token, parent); err != nil {
		caps.Errors = append(caps.Errors, fmt.Sprintf("post access: %v", err))
	} else {
		caps.PostAccess = true
	}
	return caps, nil
}
