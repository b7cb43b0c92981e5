package postgres

import (
	"context"
	"database/sql"

	"soundapi/internal/model"
	"soundapi/internal/repository"
)

// CommentPostgres is a PostgreSQL implementation of repository.CommentRepository.
type CommentPostgres struct {
	db *sql.DB
}

// NewCommentPostgres creates a new CommentPostgres repository.
func NewCommentPostgres(db *sql.DB) *CommentPostgres {
	return &CommentPostgres{db: db}
}

var _ repository.CommentRepository = (*CommentPostgres)(nil)

// Create inserts a new comment row and re-reads it with the author resolved.
func (r *CommentPostgres) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
		INSERT INTO comments (id, sound_id, user_id, comment_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.SoundID, c.UserID, c.Text, c.CreatedAt).Scan(&id); err != nil {
		return nil, mapPgError(err)
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single comment by ID with the author resolved.
func (r *CommentPostgres) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	const q = `
		SELECT c.id, c.sound_id, c.user_id, c.comment_text, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanJoinedComment(row)
}

// ListBySound returns all comments on one sound, newest first, authors resolved.
func (r *CommentPostgres) ListBySound(ctx context.Context, soundID string) ([]model.Comment, error) {
	const q = `
		SELECT c.id, c.sound_id, c.user_id, c.comment_text, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.sound_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, soundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanJoinedComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces the comment text and re-reads the row with the author resolved.
func (r *CommentPostgres) Update(ctx context.Context, id, text string) (*model.Comment, error) {
	const q = `UPDATE comments SET comment_text = $2 WHERE id = $1 RETURNING id`
	var updated string
	if err := r.db.QueryRowContext(ctx, q, id, text).Scan(&updated); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, updated)
}

// Delete removes a comment by ID. It does not return an error if the row does not exist.
func (r *CommentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM comments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

func scanJoinedComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	var username string
	if err := row.Scan(&c.ID, &c.SoundID, &c.UserID, &c.Text, &c.CreatedAt, &username); err != nil {
		return nil, err
	}
	c.Author = &model.UserRef{ID: c.UserID, Username: username}
	return &c, nil
}
