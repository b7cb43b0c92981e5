package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundapi/internal/model"
	"soundapi/internal/repository"
)

// CommentService defines the use cases for comments on sounds.
type CommentService interface {
	// Create attaches a comment to an existing sound. The author comes from
	// the authenticated identity context.
	Create(ctx context.Context, callerID, soundID, text string) (*model.Comment, error)

	// Get returns a single comment by ID with its author resolved.
	Get(ctx context.Context, id string) (*model.Comment, error)

	// ListBySound returns all comments for one sound, newest first.
	ListBySound(ctx context.Context, soundID string) ([]model.Comment, error)

	// Update replaces the comment text. Author-only.
	Update(ctx context.Context, callerID, id, text string) (*model.Comment, error)

	// Delete removes a comment. Author-only.
	Delete(ctx context.Context, callerID, id string) error
}

type commentService struct {
	comments repository.CommentRepository
	sounds   repository.SoundRepository
}

// NewCommentService constructs a new CommentService.
func NewCommentService(comments repository.CommentRepository, sounds repository.SoundRepository) CommentService {
	return &commentService{comments: comments, sounds: sounds}
}

func (s *commentService) Create(ctx context.Context, callerID, soundID, text string) (*model.Comment, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if soundID == "" {
		return nil, fmt.Errorf("%w: missing field(s): sound_id", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: missing field(s): comment_text", ErrValidation)
	}

	// The sound must exist; a comment never dangles.
	if _, err := s.sounds.FindByID(ctx, soundID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.comments.Create(ctx, &model.Comment{
		ID:        uuid.New().String(),
		SoundID:   soundID,
		UserID:    callerID,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	})
}

func (s *commentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListBySound(ctx context.Context, soundID string) ([]model.Comment, error) {
	if soundID == "" {
		return nil, fmt.Errorf("%w: missing field(s): sound", ErrValidation)
	}
	return s.comments.ListBySound(ctx, soundID)
}

func (s *commentService) Update(ctx context.Context, callerID, id, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: missing field(s): comment_text", ErrValidation)
	}
	if _, err := s.guardAuthor(ctx, callerID, id); err != nil {
		return nil, err
	}
	updated, err := s.comments.Update(ctx, id, strings.TrimSpace(text))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *commentService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.guardAuthor(ctx, callerID, id); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// guardAuthor re-fetches the comment and compares its stored author against
// the authenticated caller.
func (s *commentService) guardAuthor(ctx context.Context, callerID, id string) (*model.Comment, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	current, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current.UserID != callerID {
		return nil, ErrForbidden
	}
	return current, nil
}
