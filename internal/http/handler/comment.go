package handler

import (
	"github.com/gofiber/fiber/v2"

	"soundapi/internal/http/middleware"
	"soundapi/internal/service"
)

type createCommentRequest struct {
	Sound string `json:"sound"`
	Text  string `json:"comment_text"`
}

type updateCommentRequest struct {
	Text string `json:"comment_text"`
}

// CreateComment attaches a comment to a sound on behalf of the caller.
func CreateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCommentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		callerID, _ := c.Locals(middleware.UserIDLocalKey).(string)
		cmt, err := svc.Create(c.UserContext(), callerID, req.Sound, req.Text)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cmt)
	}
}

// ListComments returns the comments of one sound, newest first.
// The sound is selected with the ?sound= query parameter.
func ListComments(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comments, err := svc.ListBySound(c.UserContext(), c.Query("sound"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(comments)
	}
}

// GetComment returns one comment by ID.
func GetComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cmt, err := svc.Get(c.UserContext(), c.Params("commentId"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cmt)
	}
}

// UpdateComment replaces the comment text. Author-only.
func UpdateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateCommentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		callerID, _ := c.Locals(middleware.UserIDLocalKey).(string)
		cmt, err := svc.Update(c.UserContext(), callerID, c.Params("commentId"), req.Text)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cmt)
	}
}

// DeleteComment removes a comment. Author-only.
func DeleteComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _ := c.Locals(middleware.UserIDLocalKey).(string)
		if err := svc.Delete(c.UserContext(), callerID, c.Params("commentId")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
