package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bloodlagbe_backend/internal/model"
)

const postColumns = `id, content, email, first_name, last_name, clerk_id, likes, created_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Insert stores a new post. The id and all author fields are set by the
// caller; nothing is derived from the users table here, which is what keeps
// old posts attributed as they were at creation time.
func (r *postRepository) Insert(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (id, content, email, first_name, last_name, clerk_id, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Content,
		p.Email,
		p.FirstName,
		p.LastName,
		p.ClerkID,
		p.Likes,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// ListRecent returns the globally newest posts, capped at limit.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC LIMIT $1`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent posts: %w", err)
	}

	return posts, nil
}

// ListByEmail returns all posts authored under the given email, newest first.
func (r *postRepository) ListByEmail(ctx context.Context, email string) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE email = $1 ORDER BY created_at DESC`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by email: %w", err)
	}

	return posts, nil
}

// ListByClerkID returns all posts authored by the given principal, newest first.
func (r *postRepository) ListByClerkID(ctx context.Context, clerkID string) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE clerk_id = $1 ORDER BY created_at DESC`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by clerk id: %w", err)
	}

	return posts, nil
}

// GetByIDs fetches posts by id in no particular order; callers that care
// about ordering (the cache hydration path) re-order by their id list.
func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ANY($1)`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}

	return posts, nil
}
