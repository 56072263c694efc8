package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"bloodlagbe_backend/internal/model"
)

// profileColumns selects a full profile row, mapping the three social link
// columns into the nested SocialLinks struct.
const profileColumns = `
	id, clerk_id, email, first_name, last_name, blood_group, phone_number,
	bio, location, total_donation, last_donation,
	social_facebook AS "social_links.facebook",
	social_telegram AS "social_links.telegram",
	social_whatsapp AS "social_links.whatsapp",
	created_at
`

// profileRepository implements ProfileRepository using sqlx
type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Insert creates a profile row. ON CONFLICT DO NOTHING makes creation safe
// under at-least-once webhook delivery: a concurrent duplicate collapses to
// zero affected rows instead of a unique-violation error.
func (r *profileRepository) Insert(ctx context.Context, p *model.Profile) (bool, error) {
	query := `
		INSERT INTO users (clerk_id, email, first_name, last_name, blood_group,
		                   phone_number, bio, location, total_donation, last_donation,
		                   social_facebook, social_telegram, social_whatsapp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (email) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ClerkID,
		p.Email,
		p.FirstName,
		p.LastName,
		p.BloodGroup,
		p.PhoneNumber,
		p.Bio,
		p.Location,
		p.TotalDonation,
		p.LastDonation,
		p.SocialLinks.Facebook,
		p.SocialLinks.Telegram,
		p.SocialLinks.Whatsapp,
		p.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return rows > 0, nil
}

// GetByEmail retrieves a profile by its email
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE email = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return &p, nil
}

// GetByClerkID retrieves a profile by its identity-provider id
func (r *profileRepository) GetByClerkID(ctx context.Context, clerkID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE clerk_id = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, clerkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by clerk id: %w", err)
	}

	return &p, nil
}

// UpdateFields applies the reconciler's column assignments in one UPDATE.
// The caller controls which columns appear; email, clerk_id and created_at
// never do because the update schema has no entries for them.
func (r *profileRepository) UpdateFields(ctx context.Context, email string, fields []Field) error {
	if len(fields) == 0 {
		// Nothing to set; still report NotFound for an unknown email so the
		// handler surfaces 404 exactly as a non-empty update would.
		var exists bool
		err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
		if err != nil {
			return fmt.Errorf("failed to check profile existence: %w", err)
		}
		if !exists {
			return model.ErrProfileNotFound
		}
		return nil
	}

	assignments := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	for i, f := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", f.Column, i+1))
		args = append(args, f.Value)
	}
	args = append(args, email)

	query := fmt.Sprintf("UPDATE users SET %s WHERE email = $%d",
		strings.Join(assignments, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}

	return nil
}

// List returns the public listing projection, newest donors unordered by
// design (the directory has no ranking), optionally filtered by blood group.
func (r *profileRepository) List(ctx context.Context, bloodGroup string) ([]model.ProfileSummary, error) {
	query := `
		SELECT clerk_id, first_name, last_name, blood_group, phone_number,
		       location, total_donation, last_donation
		FROM users
	`

	var (
		summaries []model.ProfileSummary
		err       error
	)
	if bloodGroup != "" {
		err = r.db.SelectContext(ctx, &summaries, query+` WHERE blood_group = $1`, bloodGroup)
	} else {
		err = r.db.SelectContext(ctx, &summaries, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return summaries, nil
}
