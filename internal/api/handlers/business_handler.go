package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

type BusinessHandler struct {
	s service.BusinessProfileService
}

func NewBusinessHandler(s service.BusinessProfileService) *BusinessHandler {
	return &BusinessHandler{s: s}
}

func (h *BusinessHandler) GoogleProfile(c *fiber.Ctx) error {
	profile, err := h.s.GetGoogleProfile(c.Context(), param(c, "email"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *BusinessHandler) BusinessAccounts(c *fiber.Ctx) error {
	accounts, err := h.s.GetBusinessAccounts(c.Context(), param(c, "email"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"accounts": accounts,
	})
}

func (h *BusinessHandler) BusinessProfile(c *fiber.Ctx) error {
	data, err := h.s.GetBusinessProfileData(c.Context(), param(c, "email"), param(c, "accountName"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(data)
}

func (h *BusinessHandler) LocationDetails(c *fiber.Ctx) error {
	location, err := h.s.GetLocationDetails(c.Context(), param(c, "email"), param(c, "*"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(location)
}

func (h *BusinessHandler) UpdateLocation(c *fiber.Ctx) error {
	var req transfer.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	location, err := h.s.UpdateBusinessInfo(c.Context(), param(c, "email"), param(c, "*"), req)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(location)
}

func (h *BusinessHandler) CreatePost(c *fiber.Ctx) error {
	var req transfer.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Message == "" {
		return fail(c, fiber.StatusBadRequest, "Message is required")
	}

	post, err := h.s.CreateBusinessPost(c.Context(), param(c, "email"), param(c, "locationName"), req)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

func (h *BusinessHandler) ReviewReply(c *fiber.Ctx) error {
	var req transfer.ReviewReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ReviewName == "" || req.Comment == "" {
		return fail(c, fiber.StatusBadRequest, "reviewName and comment are required")
	}

	reply, err := h.s.ReplyToReview(c.Context(), param(c, "email"), req.ReviewName, req.Comment)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"reply":   reply,
	})
}
