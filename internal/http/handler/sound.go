package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"soundapi/internal/http/middleware"
	"soundapi/internal/model"
	"soundapi/internal/service"
	"soundapi/internal/storage"
)

type updateSoundRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
}

// callerRef builds the authenticated identity from context locals set by
// middleware.RequireAuth.
func callerRef(c *fiber.Ctx) model.UserRef {
	id, _ := c.Locals(middleware.UserIDLocalKey).(string)
	username, _ := c.Locals(middleware.UsernameLocalKey).(string)
	return model.UserRef{ID: id, Username: username}
}

// UploadSound handles the multipart upload (fields: audio, title, description, tags).
func UploadSound(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid multipart form")
		}
		files := form.File["audio"]
		if len(files) == 0 {
			return writeError(c, fiber.StatusBadRequest, "missing field(s): audio")
		}
		if len(files) > 1 {
			return writeError(c, fiber.StatusBadRequest, "expected exactly one audio file")
		}
		fh := files[0]

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "cannot open uploaded file")
		}
		defer f.Close()

		snd, err := svc.Upload(c.UserContext(), service.UploadInput{
			Owner:       callerRef(c),
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			RawTags:     c.FormValue("tags"),
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			File:        f,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(snd)
	}
}

// ListSounds returns sounds with resolved owner usernames, using limit & offset.
func ListSounds(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetSound returns one sound by ID.
func GetSound(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snd, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(snd)
	}
}

// UpdateSound modifies title/description/tags. Owner-only.
func UpdateSound(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateSoundRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		callerID, _ := c.Locals(middleware.UserIDLocalKey).(string)
		snd, err := svc.Update(c.UserContext(), callerID, c.Params("id"), service.UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			RawTags:     string(req.Tags),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(snd)
	}
}

// DeleteSound removes a sound and its blob. Owner-only.
func DeleteSound(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, _ := c.Locals(middleware.UserIDLocalKey).(string)
		if err := svc.Delete(c.UserContext(), callerID, c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StreamSound streams the blob of a sound record, honoring Range.
func StreamSound(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return openStream(c, svc, service.StreamRequest{
			SoundID: c.Params("id"),
			Range:   parseRangeHeader(c.Get(fiber.HeaderRange)),
		})
	}
}

// StreamFile streams a blob directly by its store id, honoring Range.
func StreamFile(svc service.SoundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return openStream(c, svc, service.StreamRequest{
			FileID: c.Params("fileId"),
			Range:  parseRangeHeader(c.Get(fiber.HeaderRange)),
		})
	}
}

func openStream(c *fiber.Ctx, svc service.SoundService, req service.StreamRequest) error {
	s, err := svc.OpenStream(c.UserContext(), req)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, s.ContentType)
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	if s.Partial {
		c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", s.Start, s.End, s.Size))
		c.Status(fiber.StatusPartialContent)
		return c.SendStream(s.Body, bodyLength(s.End-s.Start+1))
	}
	return c.SendStream(s.Body, bodyLength(s.Size))
}

// bodyLength narrows a stream size for SendStream. A value that does not fit
// the platform int (32-bit builds, objects >= 2GiB) degrades to -1, which
// switches the transport to chunked encoding instead of truncating the length.
func bodyLength(n int64) int {
	if n >= 0 && int64(int(n)) == n {
		return int(n)
	}
	return -1
}

// parseRangeHeader parses a single bytes range ("bytes=a-b", "bytes=a-",
// "bytes=-n"). Anything else (multi-range included) yields nil, which means
// a full-object read.
func parseRangeHeader(header string) *storage.ByteRange {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return nil
	}

	if startStr == "" {
		// Suffix range: last n bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil
		}
		return &storage.ByteRange{Start: -n, End: -1}
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil
	}
	if endStr == "" {
		return &storage.ByteRange{Start: start, End: -1}
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return nil
	}
	return &storage.ByteRange{Start: start, End: end}
}
