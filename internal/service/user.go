package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soundapi/internal/model"
	"soundapi/internal/repository"
	"soundapi/internal/storage"
)

// UserService defines the read/delete use cases for user accounts.
// Account creation lives on AuthService.
type UserService interface {
	// List returns the id+username projection of all users.
	List(ctx context.Context) ([]model.UserRef, error)

	// Get returns one user by ID (public projection fields only are serialized).
	Get(ctx context.Context, id string) (*model.User, error)

	// Delete removes a user, the blobs of every sound they own, and (via the
	// row cascade) their sound and comment rows.
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users  repository.UserRepository
	sounds repository.SoundRepository
	store  storage.BlobStore
}

// NewUserService constructs a new UserService.
func NewUserService(users repository.UserRepository, sounds repository.SoundRepository, store storage.BlobStore) UserService {
	return &userService{users: users, sounds: sounds, store: store}
}

func (s *userService) List(ctx context.Context) ([]model.UserRef, error) {
	return s.users.List(ctx)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Delete removes the blobs of every owned sound before deleting the user row,
// so the cascade that removes the sound rows never strands an object in the
// store. A blob that is already gone is an acceptable end state; any other
// store failure aborts the deletion so it can be retried.
func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	owned, err := s.sounds.FindByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("list owned sounds: %w", err)
	}
	for _, snd := range owned {
		if err := s.store.Delete(ctx, snd.Blob.FileID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			return fmt.Errorf("delete blob %s: %w", snd.Blob.FileID, err)
		}
	}

	return s.users.Delete(ctx, id)
}
