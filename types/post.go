package types

import "time"

// Post represents a blog post.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the post headline.
	Title string `json:"title" db:"title"`

	// Content is the post body.
	Content string `json:"content" db:"content"`

	// IsPublished marks whether the post is publicly visible.
	IsPublished bool `json:"is_published" db:"is_published"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostPatch carries a partial update. Nil fields are left unchanged.
type PostPatch struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}
