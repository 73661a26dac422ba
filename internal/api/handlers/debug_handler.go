package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/pkg/utils"
)

type DebugHandler struct {
	cfg config.Config
	ds  service.DebugService
	cs  service.ConnectionService
	bp  service.BusinessProfileService
}

func NewDebugHandler(cfg config.Config, ds service.DebugService, cs service.ConnectionService, bp service.BusinessProfileService) *DebugHandler {
	return &DebugHandler{cfg: cfg, ds: ds, cs: cs, bp: bp}
}

func (h *DebugHandler) Google(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.ds.GoogleConfig())
}

func (h *DebugHandler) Facebook(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.ds.FacebookConfig())
}

func (h *DebugHandler) OAuthURL(c *fiber.Ctx) error {
	state, err := utils.GenerateState(h.cfg.JWTSecret, models.PlatformGoogle, 10*time.Minute)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Unable to generate state")
	}

	out, err := h.ds.OAuthURL(state)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *DebugHandler) Tokens(c *fiber.Ctx) error {
	platform := c.Query("platform", models.PlatformGoogle)
	info, err := h.cs.DebugTokens(c.Context(), param(c, "email"), platform)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(info)
}

func (h *DebugHandler) Capabilities(c *fiber.Ctx) error {
	caps, err := h.bp.TestAPICapabilities(c.Context(), param(c, "email"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(caps)
}

func (h *DebugHandler) TestTokenRefresh(c *fiber.Ctx) error {
	result := h.ds.TestTokenRefresh(c.Context(), param(c, "email"))
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DebugHandler) ValidateEnvironment(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.ds.ValidateEnvironment())
}
