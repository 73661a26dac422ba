package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/service"
	"github.com/maheshrc27/selfpost/internal/transfer"
)

type PostHandler struct {
	s  service.PostService
	as service.AnalyticsService
}

func NewPostHandler(s service.PostService, as service.AnalyticsService) *PostHandler {
	return &PostHandler{s: s, as: as}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return fail(c, fiber.StatusBadRequest, "Unable to parse request")
	}

	post, err := h.s.CreatePost(c.Context(), userID, &pc)
	if err != nil {
		if post != nil {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"success": false,
				"post":    post,
				"error":   "Error scheduling post",
			})
		}
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	message := "Post saved as draft"
	if post.ScheduledAt != nil {
		message = "Post scheduled successfully"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"post":    post,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.ListPosts(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Unable to list posts")
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	post, err := h.s.GetPost(c.Context(), GetUserID(c), postID)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	if err := h.s.DeletePost(c.Context(), GetUserID(c), postID); err != nil {
		return failWith(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) Analytics(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid post id")
	}

	rows, err := h.as.ListForPost(c.Context(), GetUserID(c), postID)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rows)
}
