package model

import (
	"errors"
	"time"
)

// Post is a short social post. Author identity fields are denormalized
// copies taken from the session at creation time; they are intentionally not
// kept in sync with later profile edits, so old posts keep the attribution
// they were created with.
type Post struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	ClerkID   string    `db:"clerk_id" json:"clerkId"`
	Likes     int       `db:"likes" json:"likes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content string `json:"content"`
}

const (
	// DefaultRecentPostsLimit is how many posts the public listing returns.
	DefaultRecentPostsLimit = 8

	// MaxRecentPostsLimit caps the public listing.
	MaxRecentPostsLimit = 50

	// MaxPostContentLength bounds a single post body.
	MaxPostContentLength = 2000
)

var (
	// ErrPostNotFound is returned when a post cannot be found
	ErrPostNotFound = errors.New("post not found")

	// ErrEmptyContent is returned when a post is created without content
	ErrEmptyContent = errors.New("post content is required")

	// ErrContentTooLong is returned when a post body exceeds the limit
	ErrContentTooLong = errors.New("post content too long")
)
