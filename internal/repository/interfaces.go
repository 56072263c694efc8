package repository

import (
	"context"

	"bloodlagbe_backend/internal/model"
)

// Field is one column assignment produced by the profile update schema.
// Assignments are applied in slice order so generated SQL is deterministic.
type Field struct {
	Column string
	Value  interface{}
}

type ProfileRepository interface {
	// Insert creates a profile. Returns false without error when a profile
	// with the same email already exists (idempotent creation).
	Insert(ctx context.Context, p *model.Profile) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByClerkID(ctx context.Context, clerkID string) (*model.Profile, error)
	// UpdateFields sets the given columns on the profile matching email in a
	// single statement. Returns model.ErrProfileNotFound when no row matches.
	UpdateFields(ctx context.Context, email string, fields []Field) error
	// List returns the public projection, optionally filtered by an exact
	// (already normalized) blood group.
	List(ctx context.Context, bloodGroup string) ([]model.ProfileSummary, error)
}

type PostRepository interface {
	Insert(ctx context.Context, p *model.Post) error
	ListRecent(ctx context.Context, limit int) ([]model.Post, error)
	ListByEmail(ctx context.Context, email string) ([]model.Post, error)
	ListByClerkID(ctx context.Context, clerkID string) ([]model.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Post, error)
}
