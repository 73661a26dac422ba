package service

import "errors"

var (
	ErrGoogleCredentialsMissing = errors.New("google oauth client id/secret are not configured")
	ErrMissingRefreshToken      = errors.New("refresh token is empty")
	ErrUserNotFound             = errors.New("User not found")
	ErrNoActiveProfile          = errors.New("No active Google Business Profile connection found. Please reconnect your Google account.")
	ErrNoRefreshToken           = errors.New("No refresh token available. Please reconnect your Google account to enable offline access.")
	ErrNoBusinessAccounts       = errors.New("No accessible business accounts found")
	ErrNoFacebookConnection     = errors.New("No active Facebook connection found. Please connect your Facebook account.")
	ErrPageNotFound             = errors.New("Facebook page not found or not managed by this account")
	ErrUnsupportedPlatform      = errors.New("unsupported platform")
	ErrPostNotFound             = errors.New("post doesn't exist")
	ErrNothingToUpdate          = errors.New("nothing to update")
)
