package repository

import (
	"context"

	"soundapi/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user. A taken username surfaces as ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername returns a user by normalized username.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// List returns the id+username projection of all users.
	List(ctx context.Context) ([]model.UserRef, error)

	// Delete removes a user by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
