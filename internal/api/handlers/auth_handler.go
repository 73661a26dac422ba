package handlers

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/internal/transfer"
	"github.com/maheshrc27/selfpost/pkg/utils"
)

const (
	stateTTL       = 10 * time.Minute
	sessionTTL     = 24 * time.Hour
	callbackTarget = "/integration/callback"
)

type AuthHandler struct {
	cfg   config.Config
	oauth service.OAuthService
	cs    service.ConnectionService
}

func NewAuthHandler(cfg config.Config, oauth service.OAuthService, cs service.ConnectionService) *AuthHandler {
	return &AuthHandler{cfg: cfg, oauth: oauth, cs: cs}
}

func (h *AuthHandler) GoogleAuth(c *fiber.Ctx) error {
	return h.redirectToProvider(c, models.PlatformGoogle)
}

func (h *AuthHandler) FacebookAuth(c *fiber.Ctx) error {
	return h.redirectToProvider(c, models.PlatformFacebook)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	return h.callback(c, models.PlatformGoogle)
}

func (h *AuthHandler) FacebookCallback(c *fiber.Ctx) error {
	return h.callback(c, models.PlatformFacebook)
}

func (h *AuthHandler) redirectToProvider(c *fiber.Ctx, platform string) error {
	state, err := utils.GenerateState(h.cfg.JWTSecret, platform, stateTTL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Unable to start authorization")
	}

	authURL, err := h.oauth.AuthURL(platform, state)
	if err != nil {
		slog.Error(err.Error())
		return fail(c, statusFor(err), err.Error())
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *AuthHandler) callback(c *fiber.Ctx, platform string) error {
	if reason := c.Query("error"); reason != "" {
		return h.redirectResult(c, platform, nil, reason)
	}

	if err := utils.ValidateState(h.cfg.JWTSecret, c.Query("state"), platform); err != nil {
		return h.redirectResult(c, platform, nil, "invalid_state")
	}

	var (
		cb  *transfer.OAuthCallback
		err error
	)
	switch platform {
	case models.PlatformGoogle:
		cb, err = h.oauth.ExchangeGoogle(c.Context(), c.Query("code"))
	case models.PlatformFacebook:
		cb, err = h.oauth.ExchangeFacebook(c.Context(), c.Query("code"))
	}
	if err != nil {
		return h.redirectResult(c, platform, nil, err.Error())
	}

	result := h.cs.StoreConnection(c.Context(), platform, *cb)
	if !result.Success {
		return h.redirectResult(c, platform, nil, result.Error)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, result.UserID, result.UserEmail, sessionTTL)
	if err != nil {
		return h.redirectResult(c, platform, nil, "session_error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
	})

	return h.redirectResult(c, platform, &result, "")
}

func (h *AuthHandler) redirectResult(c *fiber.Ctx, platform string, result *transfer.ConnectionResult, reason string) error {
	params := url.Values{}
	params.Set("platform", platform)
	if result != nil {
		params.Set("success", "true")
		params.Set("profile_id", result.ProfileID)
		params.Set("email", result.UserEmail)
	} else {
		slog.Warn("oauth callback failed", "platform", platform, "reason", reason)
		params.Set("success", "false")
		params.Set("error", reason)
	}

	target := fmt.Sprintf("%s%s?%s", h.cfg.FrontendURL, callbackTarget, params.Encode())
	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}
