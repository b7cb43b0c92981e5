package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"soundapi/internal/model"
	"soundapi/internal/repository"
)

// SoundPostgres is a PostgreSQL implementation of repository.SoundRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SoundPostgres struct {
	db *sql.DB
}

// NewSoundPostgres creates a new SoundPostgres repository.
func NewSoundPostgres(db *sql.DB) *SoundPostgres {
	return &SoundPostgres{db: db}
}

var _ repository.SoundRepository = (*SoundPostgres)(nil)

func marshalTags(tags []model.Tag) ([]byte, error) {
	if tags == nil {
		tags = []model.Tag{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return b, nil
}

func unmarshalTags(raw []byte, dst *[]model.Tag) error {
	if len(raw) == 0 {
		*dst = []model.Tag{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal tags: %w", err)
	}
	return nil
}

// Create inserts a new sound row and returns the stored record.
func (r *SoundPostgres) Create(ctx context.Context, s *model.Sound) (*model.Sound, error) {
	const q = `
		INSERT INTO sounds (id, owner_user_id, title, description, tags, file_id, filename, content_type, size, uploaded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, owner_user_id, title, description, tags, file_id, filename, content_type, size, uploaded_at, created_at, updated_at
	`
	tags, err := marshalTags(s.Tags)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, q,
		s.ID,
		s.OwnerID,
		s.Title,
		s.Description,
		tags,
		s.Blob.FileID,
		s.Blob.Filename,
		s.Blob.ContentType,
		s.Blob.Size,
		s.Blob.UploadedAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	var out model.Sound
	var rawTags []byte
	if err := row.Scan(
		&out.ID,
		&out.OwnerID,
		&out.Title,
		&out.Description,
		&rawTags,
		&out.Blob.FileID,
		&out.Blob.Filename,
		&out.Blob.ContentType,
		&out.Blob.Size,
		&out.Blob.UploadedAt,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	if err := unmarshalTags(rawTags, &out.Tags); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single sound by its ID with the owning user resolved.
func (r *SoundPostgres) FindByID(ctx context.Context, id string) (*model.Sound, error) {
	const q = `
		SELECT s.id, s.owner_user_id, s.title, s.description, s.tags, s.file_id, s.filename, s.content_type, s.size, s.uploaded_at, s.created_at, s.updated_at, u.username
		FROM sounds s
		JOIN users u ON u.id = s.owner_user_id
		WHERE s.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	s, err := scanJoinedSound(row)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindByOwner fetches every sound owned by one user, newest first.
func (r *SoundPostgres) FindByOwner(ctx context.Context, ownerID string) ([]model.Sound, error) {
	const q = `
		SELECT s.id, s.owner_user_id, s.title, s.description, s.tags, s.file_id, s.filename, s.content_type, s.size, s.uploaded_at, s.created_at, s.updated_at, u.username
		FROM sounds s
		JOIN users u ON u.id = s.owner_user_id
		WHERE s.owner_user_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Sound, 0)
	for rows.Next() {
		s, err := scanJoinedSound(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns sounds using LIMIT/OFFSET pagination and a total count,
// newest first, owners resolved.
func (r *SoundPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Sound], error) {
	const qCount = `SELECT COUNT(*) FROM sounds`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT s.id, s.owner_user_id, s.title, s.description, s.tags, s.file_id, s.filename, s.content_type, s.size, s.uploaded_at, s.created_at, s.updated_at, u.username
		FROM sounds s
		JOIN users u ON u.id = s.owner_user_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Sound, 0)
	for rows.Next() {
		s, err := scanJoinedSound(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Sound]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists the mutable descriptive fields and returns the updated row.
func (r *SoundPostgres) Update(ctx context.Context, s *model.Sound) (*model.Sound, error) {
	const q = `
		UPDATE sounds
		SET title = $2, description = $3, tags = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, owner_user_id, title, description, tags, file_id, filename, content_type, size, uploaded_at, created_at, updated_at
	`
	tags, err := marshalTags(s.Tags)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, q, s.ID, s.Title, s.Description, tags, s.UpdatedAt)
	var out model.Sound
	var rawTags []byte
	if err := row.Scan(
		&out.ID,
		&out.OwnerID,
		&out.Title,
		&out.Description,
		&rawTags,
		&out.Blob.FileID,
		&out.Blob.Filename,
		&out.Blob.ContentType,
		&out.Blob.Size,
		&out.Blob.UploadedAt,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalTags(rawTags, &out.Tags); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a sound by ID. It does not return an error if the row does not exist.
func (r *SoundPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sounds WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJoinedSound(row rowScanner) (*model.Sound, error) {
	var s model.Sound
	var rawTags []byte
	var username string
	if err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.Title,
		&s.Description,
		&rawTags,
		&s.Blob.FileID,
		&s.Blob.Filename,
		&s.Blob.ContentType,
		&s.Blob.Size,
		&s.Blob.UploadedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
		&username,
	); err != nil {
		return nil, err
	}
	if err := unmarshalTags(rawTags, &s.Tags); err != nil {
		return nil, err
	}
	s.Author = &model.UserRef{ID: s.OwnerID, Username: username}
	return &s, nil
}
