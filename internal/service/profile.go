package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/repository"
)

// ProfileService is the reconciler: it keeps the stored profile consistent
// with partial edits from the authenticated owner and with the one-time
// creation signal from the identity provider.
type ProfileService struct {
	repo repository.ProfileRepository
	now  func() time.Time
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		repo: repo,
		now:  time.Now,
	}
}

// CreateIfAbsent creates a profile for a newly signed-up principal. Repeated
// delivery of the same signal never produces a duplicate or overwrites an
// existing profile: the email lookup short-circuits, and the insert itself is
// conflict-safe for deliveries racing past the lookup.
func (s *ProfileService) CreateIfAbsent(ctx context.Context, evt model.IdentityEvent) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, evt.Email)
	if err == nil {
		return false, nil
	}
	if err != model.ErrProfileNotFound {
		return false, fmt.Errorf("lookup profile for %q: %w", evt.Email, err)
	}

	profile := &model.Profile{
		ClerkID:   evt.ClerkID,
		Email:     evt.Email,
		FirstName: evt.FirstName,
		LastName:  evt.LastName,
		CreatedAt: s.now().UTC(),
		// Every other attribute starts at its zero value: blood_group "",
		// total_donation 0, last_donation null, social links all empty.
	}

	created, err := s.repo.Insert(ctx, profile)
	if err != nil {
		return false, fmt.Errorf("create profile for %q: %w", evt.Email, err)
	}
	if created {
		log.Printf("[ProfileService] Created profile: clerk_id=%s", evt.ClerkID)
	}

	return created, nil
}

// updatableField describes one whitelisted payload key: how its raw JSON
// value becomes column assignments. Adding a writable field means adding an
// entry here, not new conditional logic. email, clerk_id and created_at have
// no entry, which is what makes them unwritable.
type updatableField struct {
	key   string
	apply func(raw json.RawMessage, out *[]repository.Field) error
}

var updateSchema = []updatableField{
	{key: "first_name", apply: applyString("first_name")},
	{key: "last_name", apply: applyString("last_name")},
	{key: "blood_group", apply: applyBloodGroup},
	{key: "phone_number", apply: applyString("phone_number")},
	{key: "bio", apply: applyString("bio")},
	{key: "location", apply: applyString("location")},
	{key: "total_donation", apply: applyTotalDonation},
	{key: "last_donation", apply: applyLastDonation},
	{key: "social_links", apply: applySocialLinks},
}

// ApplyPartialUpdate writes the whitelisted fields present in the payload to
// the profile matching ownerEmail. Keys absent from the payload leave the
// stored values untouched; keys outside the schema are ignored. All present
// fields are applied in a single statement or not at all.
func (s *ProfileService) ApplyPartialUpdate(ctx context.Context, ownerEmail string, payload map[string]json.RawMessage) error {
	var fields []repository.Field
	for _, field := range updateSchema {
		raw, present := payload[field.key]
		if !present {
			continue
		}
		if err := field.apply(raw, &fields); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateFields(ctx, ownerEmail, fields); err != nil {
		if err == model.ErrProfileNotFound {
			return err
		}
		return fmt.Errorf("update profile for %q: %w", ownerEmail, err)
	}

	return nil
}

func applyString(column string) func(json.RawMessage, *[]repository.Field) error {
	return func(raw json.RawMessage, out *[]repository.Field) error {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return &model.ValidationFailure{Field: column, Err: err}
		}
		*out = append(*out, repository.Field{Column: column, Value: value})
		return nil
	}
}

func applyBloodGroup(raw json.RawMessage, out *[]repository.Field) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return &model.ValidationFailure{Field: "blood_group", Err: err}
	}
	normalized, err := model.NormalizeBloodGroup(value)
	if err != nil {
		return err
	}
	*out = append(*out, repository.Field{Column: "blood_group", Value: normalized})
	return nil
}

func applyTotalDonation(raw json.RawMessage, out *[]repository.Field) error {
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.ErrInvalidDonationCount
	}
	if value < 0 {
		return model.ErrInvalidDonationCount
	}
	*out = append(*out, repository.Field{Column: "total_donation", Value: value})
	return nil
}

// lastDonationFormats are the accepted date layouts, tried in order.
var lastDonationFormats = []string{time.RFC3339, "2006-01-02"}

func applyLastDonation(raw json.RawMessage, out *[]repository.Field) error {
	if string(raw) == "null" {
		// Explicit null clears the stored date.
		*out = append(*out, repository.Field{Column: "last_donation", Value: (*time.Time)(nil)})
		return nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.ErrInvalidDonationDate
	}
	for _, layout := range lastDonationFormats {
		if t, err := time.Parse(layout, value); err == nil {
			*out = append(*out, repository.Field{Column: "last_donation", Value: t})
			return nil
		}
	}
	return model.ErrInvalidDonationDate
}

// applySocialLinks replaces the whole social link set: sub-fields absent from
// the payload reset to empty rather than surviving from the stored value.
func applySocialLinks(raw json.RawMessage, out *[]repository.Field) error {
	var links model.SocialLinks
	if err := json.Unmarshal(raw, &links); err != nil {
		return &model.ValidationFailure{Field: "social_links", Err: err}
	}
	*out = append(*out,
		repository.Field{Column: "social_facebook", Value: links.Facebook},
		repository.Field{Column: "social_telegram", Value: links.Telegram},
		repository.Field{Column: "social_whatsapp", Value: links.Whatsapp},
	)
	return nil
}
