package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/maheshrc27/selfpost/internal/service"
)

type UserHandler struct {
	ur repository.UserRepository
	cs service.ConnectionService
}

func NewUserHandler(ur repository.UserRepository, cs service.ConnectionService) *UserHandler {
	return &UserHandler{ur: ur, cs: cs}
}

// GetUserInfo returns the session user together with their connections.
func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	user, found, err := h.ur.GetByID(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Unable to load user")
	}
	if !found {
		return fail(c, fiber.StatusNotFound, service.ErrUserNotFound.Error())
	}

	connections, err := h.cs.GetUserConnections(c.Context(), user.Email)
	if err != nil {
		return failWith(c, err)
	}

	return c.JSON(fiber.Map{
		"user":        user,
		"connections": connections.Connections,
	})
}
