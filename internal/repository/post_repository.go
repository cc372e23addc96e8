package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/atempo/atempo-server/internal/model"
)

// PostRepo persists fan board posts and their comments.  The visible_to and
// to_names lists are stored as JSON text columns; MySQL never needs to query
// inside them because visibility filtering happens in the handler.
type PostRepo struct {
	db *sql.DB
}

// NewPostRepo returns a new PostRepo bound to the given database.
func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func decodeList(raw string) []string {
	var out []string
	if raw == "" || json.Unmarshal([]byte(raw), &out) != nil {
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// Create inserts a post and populates its generated ID and timestamps.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	visibleTo, err := encodeList(p.VisibleTo)
	if err != nil {
		return err
	}
	toNames, err := encodeList(p.ToNames)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (content, from_name, from_uid, is_public, visible_to, to_names, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Content, p.From, p.FromUID, p.IsPublic, visibleTo, toNames, p.Color, now, now)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

const postCols = `id, content, from_name, from_uid, is_public, visible_to, to_names, color, created_at, updated_at`

func scanPost(s interface{ Scan(...any) error }) (*model.Post, error) {
	var (
		p         model.Post
		visibleTo string
		toNames   string
	)
	err := s.Scan(&p.ID, &p.Content, &p.From, &p.FromUID, &p.IsPublic,
		&visibleTo, &toNames, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.VisibleTo = decodeList(visibleTo)
	p.ToNames = decodeList(toNames)
	return &p, nil
}

// GetByID loads one post.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postCols+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns every post, newest first.  The caller filters by visibility;
// the store hands out the full board.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postCols+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update rewrites a post's content and presentation fields.  Authorship and
// audience are fixed at creation; only content and color may change.
func (r *PostRepo) Update(ctx context.Context, id uint64, content, color string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET content = ?, color = ?, updated_at = ? WHERE id = ?`,
		content, color, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post and its comments in one transaction.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CreateComment inserts a reply under a post.
func (r *PostRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, content, author, author_uid, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.PostID, c.Content, c.Author, c.AuthorUID, now)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt = now
	return nil
}

// ListComments returns a post's comments, oldest first.
func (r *PostRepo) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, content, author, author_uid, created_at FROM comments WHERE post_id = ? ORDER BY created_at ASC`,
		postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.AuthorUID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetComment loads one comment, for ownership checks before deletion.
func (r *PostRepo) GetComment(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, post_id, content, author, author_uid, created_at FROM comments WHERE id = ?`,
		id).Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.AuthorUID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment removes one comment.
func (r *PostRepo) DeleteComment(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
