package repository

import (
	"context"

	"soundapi/internal/model"
)

// SoundRepository defines data access for sound records using SQL queries only.
// No business logic here — strictly persistence operations. Reads resolve the
// owning user into the Author projection with a one-level join.
type SoundRepository interface {
	// Create inserts a new sound record referencing an already-committed blob.
	// Returns the stored record (may include values set by the DB).
	Create(ctx context.Context, s *model.Sound) (*model.Sound, error)

	// FindByID returns a sound by its ID with the author resolved.
	FindByID(ctx context.Context, id string) (*model.Sound, error)

	// FindByOwner returns all sounds owned by one user, newest first.
	FindByOwner(ctx context.Context, ownerID string) ([]model.Sound, error)

	// List returns a paginated list of sounds (author resolved) and a total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Sound], error)

	// Update persists title, description and tags of an existing record and
	// returns the updated row.
	Update(ctx context.Context, s *model.Sound) (*model.Sound, error)

	// Delete removes a sound by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
