package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundapi/internal/model"
	"soundapi/internal/repository"
	"soundapi/internal/storage"
)

// UploadInput carries one multipart upload request into the pipeline.
// Owner comes from the authenticated identity context, never from the body.
type UploadInput struct {
	Owner       model.UserRef
	Title       string
	Description string
	RawTags     string
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader
}

// UpdateInput carries the mutable descriptive fields of a sound.
type UpdateInput struct {
	Title       string
	Description string
	RawTags     string
}

// StreamRequest resolves a byte stream either through a sound record
// (SoundID) or directly by blob id (FileID). Exactly one should be set.
type StreamRequest struct {
	SoundID string
	FileID  string
	Range   *storage.ByteRange
}

// Stream is an open playback stream. The caller owns Body.
type Stream struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
	Size        int64
	Partial     bool
	Start       int64
	End         int64
}

// SoundListResult is the service-level DTO for paginated sounds.
type SoundListResult struct {
	Items []model.Sound `json:"data"`
	Total int           `json:"total"`
}

// SoundService defines the use cases for handling sound records and their blobs.
type SoundService interface {
	// Upload streams the payload into the blob store and creates the metadata
	// record only after the blob commit succeeds. A failed metadata write
	// triggers a best-effort delete of the committed blob.
	Upload(ctx context.Context, in UploadInput) (*model.Sound, error)

	// List returns sounds with resolved owners using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*SoundListResult, error)

	// Get returns a single sound by its ID.
	Get(ctx context.Context, id string) (*model.Sound, error)

	// Update modifies title/description/tags. Owner-only: the stored record is
	// re-fetched and its owner compared against callerID.
	Update(ctx context.Context, callerID, id string, in UpdateInput) (*model.Sound, error)

	// Delete removes a sound and its blob. Owner-only, same guard as Update.
	Delete(ctx context.Context, callerID, id string) error

	// OpenStream resolves a playback stream by sound id or raw blob id,
	// forwarding a byte range when one was requested.
	OpenStream(ctx context.Context, req StreamRequest) (*Stream, error)
}

type soundService struct {
	store              storage.BlobStore
	repo               repository.SoundRepository
	defaultContentType string
}

// NewSoundService constructs a new SoundService.
func NewSoundService(store storage.BlobStore, repo repository.SoundRepository, defaultContentType string) SoundService {
	if defaultContentType == "" {
		defaultContentType = "audio/mpeg"
	}
	return &soundService{store: store, repo: repo, defaultContentType: defaultContentType}
}

func (s *soundService) Upload(ctx context.Context, in UploadInput) (*model.Sound, error) {
	if in.Owner.ID == "" {
		return nil, ErrUnauthorized
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.File == nil {
		missing = append(missing, "audio")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing field(s): %s", ErrValidation, strings.Join(missing, ", "))
	}

	// Content-type and size gates run inside OpenWrite, before any byte is persisted.
	handle, err := s.store.OpenWrite(ctx, in.Filename, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(handle, in.File); err != nil {
		handle.Abort()
		if errors.Is(err, storage.ErrPayloadTooLarge) {
			return nil, err
		}
		// Client disconnects and transport faults land here.
		return nil, fmt.Errorf("stream payload: %v: %w", err, storage.ErrIncompleteUpload)
	}

	info, err := handle.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("commit blob: %w", err)
	}

	tags, ok := model.ParseTags(in.RawTags)
	if !ok {
		// Lenient policy: a bad tag list never fails an otherwise valid upload.
		logEvent("warn", "tag_parse_rejected", map[string]any{
			"owner_id": in.Owner.ID,
			"raw_tags": in.RawTags,
		})
	}

	now := time.Now().UTC()
	sound := &model.Sound{
		ID:          uuid.New().String(),
		OwnerID:     in.Owner.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Tags:        tags,
		Blob: model.BlobRef{
			FileID:      info.ID,
			Filename:    info.Filename,
			ContentType: info.ContentType,
			Size:        info.Size,
			UploadedAt:  info.UploadedAt,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.repo.Create(ctx, sound)
	if err != nil {
		// Compensating action: the blob was committed but no record points at
		// it. Best-effort delete; failure is logged, never re-raised.
		if delErr := s.store.Delete(ctx, info.ID); delErr != nil && !errors.Is(delErr, storage.ErrBlobNotFound) {
			logEvent("error", "compensating_blob_delete_failed", map[string]any{
				"file_id": info.ID,
				"error":   delErr.Error(),
			})
		}
		return nil, fmt.Errorf("record metadata: %w", err)
	}

	stored.Author = &model.UserRef{ID: in.Owner.ID, Username: in.Owner.Username}
	return stored, nil
}

// List returns paginated sounds without exposing repository types.
func (s *soundService) List(ctx context.Context, limit, offset int) (*SoundListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SoundListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a sound by ID.
func (s *soundService) Get(ctx context.Context, id string) (*model.Sound, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	snd, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snd, nil
}

func (s *soundService) Update(ctx context.Context, callerID, id string, in UpdateInput) (*model.Sound, error) {
	current, err := s.guardOwner(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing field(s): %s", ErrValidation, strings.Join(missing, ", "))
	}

	tags, ok := model.ParseTags(in.RawTags)
	if !ok {
		logEvent("warn", "tag_parse_rejected", map[string]any{
			"sound_id": id,
			"raw_tags": in.RawTags,
		})
	}

	updated, err := s.repo.Update(ctx, &model.Sound{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Tags:        tags,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	updated.Author = current.Author
	return updated, nil
}

// Delete removes the blob first, then the record. A blob that is already
// gone is an acceptable end state, not an error.
func (s *soundService) Delete(ctx context.Context, callerID, id string) error {
	current, err := s.guardOwner(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, current.Blob.FileID); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// guardOwner re-fetches the record and compares its stored owner against the
// authenticated caller. A client-supplied owner id is never consulted.
func (s *soundService) guardOwner(ctx context.Context, callerID, id string) (*model.Sound, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return current, nil
}

// OpenStream is the single resolver behind both streaming routes. Read-path
// faults are normalized to ErrNotFound at this boundary; the lower-level
// cause is logged so "metadata exists, blob missing" stays distinguishable
// from "metadata missing" internally.
func (s *soundService) OpenStream(ctx context.Context, req StreamRequest) (*Stream, error) {
	fileID := req.FileID
	storedType := ""
	filename := ""

	if req.SoundID != "" {
		snd, err := s.repo.FindByID(ctx, req.SoundID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		fileID = snd.Blob.FileID
		storedType = snd.Blob.ContentType
		filename = snd.Blob.Filename
	}
	if fileID == "" {
		return nil, ErrIDRequired
	}

	res, err := s.store.OpenRead(ctx, fileID, req.Range)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			logEvent("warn", "blob_missing", map[string]any{
				"file_id":      fileID,
				"sound_id":     req.SoundID,
				"has_metadata": req.SoundID != "",
			})
			return nil, ErrNotFound
		}
		logEvent("error", "blob_read_failed", map[string]any{
			"file_id": fileID,
			"error":   err.Error(),
		})
		return nil, ErrNotFound
	}

	contentType := storedType
	if contentType == "" {
		contentType = res.Info.ContentType
	}
	if contentType == "" {
		contentType = s.defaultContentType
	}
	if filename == "" {
		filename = res.Info.Filename
	}

	return &Stream{
		Body:        res.Body,
		ContentType: contentType,
		Filename:    filename,
		Size:        res.Info.Size,
		Partial:     res.Partial,
		Start:       res.Start,
		End:         res.End,
	}, nil
}
