package repository

import (
	"context"

	"soundapi/internal/model"
)

// CommentRepository defines data access for comments on sounds.
type CommentRepository interface {
	// Create inserts a new comment and returns it with the author resolved.
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)

	// FindByID returns a comment by ID with the author resolved.
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// ListBySound returns all comments for one sound, newest first, authors resolved.
	ListBySound(ctx context.Context, soundID string) ([]model.Comment, error)

	// Update replaces the comment text and returns the updated row.
	Update(ctx context.Context, id, text string) (*model.Comment, error)

	// Delete removes a comment by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
