package handler

import (
	"github.com/gofiber/fiber/v2"

	"soundapi/internal/service"
)

// ListUsers returns the id+username projection of all users.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(users)
	}
}

// GetUser returns one user by ID.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), c.Params("userId"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// DeleteUser removes a user by ID.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("userId")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
