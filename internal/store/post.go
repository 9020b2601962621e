package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mblog/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]types.Post, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM posts`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, title, content, is_published, created_at, updated_at
		FROM posts
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0, limit)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.IsPublished,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT id, title, content, is_published, created_at, updated_at
		FROM posts
		WHERE id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO posts (title, content, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Content,
		post.IsPublished,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}

	return post, nil
}

// Patch applies only the fields set in patch and returns the updated row.
// COALESCE keeps the stored value wherever the patch field is nil.
func (r *PostRepository) Patch(ctx context.Context, id int, patch types.PostPatch) (types.Post, error) {
	const query = `
		UPDATE posts
		SET title = COALESCE($1, title),
			content = COALESCE($2, content),
			is_published = COALESCE($3, is_published),
			updated_at = $4
		WHERE id = $5
		RETURNING id, title, content, is_published, created_at, updated_at`
	var post types.Post
	err := r.db.QueryRowContext(
		ctx,
		query,
		patch.Title,
		patch.Content,
		patch.IsPublished,
		time.Now(),
		id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
