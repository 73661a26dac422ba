package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/selfpost/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(s service.MediaService) *MediaHandler {
	return &MediaHandler{s: s}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file selected")
	}

	result, err := h.s.Upload(c.Context(), GetUserID(c), file)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMedia) {
			return fail(c, fiber.StatusUnsupportedMediaType, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, "Unable to upload file")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
