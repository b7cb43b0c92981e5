package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"soundapi/internal/auth"
	"soundapi/internal/http/middleware"
	"soundapi/internal/service"
)

// Services bundles the use-case layer handed to the HTTP surface.
type Services struct {
	Auth    service.AuthService
	User    service.UserService
	Sound   service.SoundService
	Comment service.CommentService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services, tokens *auth.TokenManager) {
	requireAuth := middleware.RequireAuth(tokens)

	// Health: readiness (DB ping) and plain liveness
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/sign-up", SignUp(svcs.Auth))
	app.Post("/auth/sign-in", SignIn(svcs.Auth))

	app.Get("/users", requireAuth, ListUsers(svcs.User))
	app.Get("/users/:userId", requireAuth, GetUser(svcs.User))
	app.Delete("/users/:userId", requireAuth, DeleteUser(svcs.User))

	// The literal stream segment must be registered before /sounds/:id so the
	// router never treats "stream" as a sound id.
	app.Get("/sounds/stream/:fileId", StreamFile(svcs.Sound))

	app.Post("/sounds", requireAuth, UploadSound(svcs.Sound))
	app.Get("/sounds", ListSounds(svcs.Sound))
	app.Get("/sounds/:id", GetSound(svcs.Sound))
	app.Get("/sounds/:id/stream", StreamSound(svcs.Sound))
	app.Put("/sounds/:id", requireAuth, UpdateSound(svcs.Sound))
	app.Delete("/sounds/:id", requireAuth, DeleteSound(svcs.Sound))

	app.Post("/comments", requireAuth, CreateComment(svcs.Comment))
	app.Get("/comments", ListComments(svcs.Comment))
	app.Get("/comments/:commentId", GetComment(svcs.Comment))
	app.Put("/comments/:commentId", requireAuth, UpdateComment(svcs.Comment))
	app.Delete("/comments/:commentId", requireAuth, DeleteComment(svcs.Comment))
}
