package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/models"
	"github.com/maheshrc27/selfpost/internal/service"
)

type ConnectionHandler struct {
	cs service.ConnectionService
}

func NewConnectionHandler(cs service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{cs: cs}
}

func (h *ConnectionHandler) Connections(c *fiber.Ctx) error {
	resp, err := h.cs.GetUserConnections(c.Context(), param(c, "email"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *ConnectionHandler) Disconnect(c *fiber.Ctx) error {
	result := h.cs.DisconnectPlatform(c.Context(), param(c, "email"), c.Params("platform"))
	if !result.Success {
		status := fiber.StatusBadRequest
		if result.Error == service.ErrUserNotFound.Error() {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ConnectionHandler) ClearOAuthState(c *fiber.Ctx) error {
	result := h.cs.ClearOAuthState(c.Context(), param(c, "email"))
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ConnectionHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.cs.ListProfiles(c.Context())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch social profiles")
	}
	if profiles == nil {
		profiles = []*models.SocialProfile{}
	}
	return c.Status(fiber.StatusOK).JSON(profiles)
}

func (h *ConnectionHandler) GetProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid profile id")
	}

	profile, err := h.cs.GetProfile(c.Context(), id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}
