package handler

import (
	"github.com/gofiber/fiber/v2"

	"soundapi/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp creates an account and returns a token for it.
func SignUp(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		res, err := svc.SignUp(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// SignIn verifies credentials and returns a token.
func SignIn(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		res, err := svc.SignIn(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}
