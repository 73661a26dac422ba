package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

type FacebookHandler struct {
	s service.FacebookService
}

func NewFacebookHandler(s service.FacebookService) *FacebookHandler {
	return &FacebookHandler{s: s}
}

type facebookPostBody struct {
	Message     string     `json:"message"`
	Link        string     `json:"link"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

func (h *FacebookHandler) Pages(c *fiber.Ctx) error {
	pages, err := h.s.GetFacebookPages(c.Context(), param(c, "email"))
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"pages":   pages,
	})
}

func (h *FacebookHandler) Post(c *fiber.Ctx) error {
	var body facebookPostBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.Message == "" && body.Link == "" {
		return fail(c, fiber.StatusBadRequest, "message or link is required")
	}

	data := transfer.FacebookPostData{Message: body.Message, Link: body.Link}
	email, pageID := param(c, "email"), c.Params("pageId")

	var (
		result *transfer.FacebookPostResult
		err    error
	)
	if body.ScheduledAt != nil && body.ScheduledAt.After(time.Now()) {
		result, err = h.s.ScheduleFacebookPost(c.Context(), email, pageID, data, *body.ScheduledAt)
	} else {
		result, err = h.s.PostToFacebookPage(c.Context(), email, pageID, data)
	}
	if err != nil {
		return failWith(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    result,
	})
}

func (h *FacebookHandler) Insights(c *fiber.Ctx) error {
	var metrics []string
	if m := c.Query("metric"); m != "" {
		metrics = strings.Split(m, ",")
	}

	insights, err := h.s.GetPageInsights(c.Context(), param(c, "email"), c.Params("pageId"), metrics)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(insights)
}
