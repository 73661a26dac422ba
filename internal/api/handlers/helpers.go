package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/service"
)

func GetUserID(c *fiber.Ctx) uuid.UUID {
	raw, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// param returns a route parameter with percent-escapes decoded.
func param(c *fiber.Ctx, name string) string {
	v := c.Params(name)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// statusFor maps service errors onto HTTP codes.
func statusFor(err error) int {
	var apiErr *service.APIError
	var graphErr *service.GraphError
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrPageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNoActiveProfile),
		errors.Is(err, service.ErrNoRefreshToken),
		errors.Is(err, service.ErrNoFacebookConnection):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNoBusinessAccounts):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNothingToUpdate):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrGoogleCredentialsMissing):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == fiber.StatusUnauthorized || apiErr.StatusCode == fiber.StatusForbidden {
			return apiErr.StatusCode
		}
		return fiber.StatusBadGateway
	case errors.As(err, &graphErr):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func failWith(c *fiber.Ctx, err error) error {
	return fail(c, statusFor(err), err.Error())
}
