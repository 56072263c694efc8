package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bloodlagbe_backend/internal/cache"
	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/repository"
)

// PostService creates and lists short posts. The public recent listing reads
// through a Redis sorted-set cache of post ids; the database remains the
// source of truth and every cache failure falls back to a direct query.
type PostService struct {
	repo  repository.PostRepository
	cache cache.RecentPostsCache
	now   func() time.Time
}

func NewPostService(repo repository.PostRepository, recentCache cache.RecentPostsCache) *PostService {
	return &PostService{
		repo:  repo,
		cache: recentCache,
		now:   time.Now,
	}
}

// Create stores a new post attributed to the authenticated principal. Author
// fields are copied from the verified session at creation time and never
// re-synced with later profile edits.
func (s *PostService) Create(ctx context.Context, principal model.Principal, content string) (*model.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, model.ErrEmptyContent
	}
	if len(content) > model.MaxPostContentLength {
		return nil, model.ErrContentTooLong
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		Content:   content,
		Email:     principal.Email,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		ClerkID:   principal.ClerkID,
		Likes:     0,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := s.cache.Add(ctx, post.ID, post.CreatedAt); err != nil {
		// The post is stored; a stale cache entry falls off at the TTL.
		log.Printf("[PostService] Failed to cache post %s: %v", post.ID, err)
	}

	return post, nil
}

// ListRecent returns the globally newest posts, capped at limit (default 8).
//
// Flow, adapted to a single global key:
// 1. If the cache key is missing, warm it from the database and serve that.
// 2. Otherwise take ids newest-first from the cache and hydrate from the
//    database, preserving cache order.
// 3. Any cache error degrades to the direct database query.
func (s *PostService) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = model.DefaultRecentPostsLimit
	}
	if limit > model.MaxRecentPostsLimit {
		limit = model.MaxRecentPostsLimit
	}

	exists, err := s.cache.Exists(ctx)
	if err != nil {
		log.Printf("[PostService] Recent cache check failed: %v", err)
		return s.listRecentFromDB(ctx, limit, false)
	}
	if !exists {
		return s.listRecentFromDB(ctx, limit, true)
	}

	ids, err := s.cache.Latest(ctx, limit)
	if err != nil {
		log.Printf("[PostService] Recent cache read failed: %v", err)
		return s.listRecentFromDB(ctx, limit, false)
	}
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	posts, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate recent posts: %w", err)
	}

	// Restore cache order; ids whose rows vanished are skipped.
	byID := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

func (s *PostService) listRecentFromDB(ctx context.Context, limit int, warm bool) ([]model.Post, error) {
	posts, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	if warm {
		if err := s.cache.Warm(ctx, posts); err != nil {
			log.Printf("[PostService] Recent cache warm failed: %v", err)
		}
	}

	return posts, nil
}

// ListByAuthor returns the caller's own posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, email string) ([]model.Post, error) {
	posts, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}
