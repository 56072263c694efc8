package model

import (
	"errors"
	"strings"
	"time"
)

// Profile is the persisted donor record, keyed by email for authenticated
// operations and by clerk_id for public lookups.
type Profile struct {
	ID            int64       `db:"id" json:"-"` // internal row id, never serialized
	ClerkID       string      `db:"clerk_id" json:"clerkId"`
	Email         string      `db:"email" json:"email"`
	FirstName     string      `db:"first_name" json:"first_name"`
	LastName      string      `db:"last_name" json:"last_name"`
	BloodGroup    string      `db:"blood_group" json:"blood_group"`
	PhoneNumber   string      `db:"phone_number" json:"phone_number"`
	Bio           string      `db:"bio" json:"bio"`
	Location      string      `db:"location" json:"location"`
	TotalDonation int         `db:"total_donation" json:"total_donation"`
	LastDonation  *time.Time  `db:"last_donation" json:"last_donation"`
	SocialLinks   SocialLinks `db:"social_links" json:"social_links"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// SocialLinks holds the donor's contact handles. Fields default to the empty
// string and are never null; an update replaces the whole set.
type SocialLinks struct {
	Facebook string `db:"facebook" json:"facebook"`
	Telegram string `db:"telegram" json:"telegram"`
	Whatsapp string `db:"whatsapp" json:"whatsapp"`
}

// ProfileSummary is the public listing projection. It deliberately omits
// email, bio, social_links and createdAt: the listing endpoint is
// unauthenticated and must not leak contact or internal fields.
type ProfileSummary struct {
	ClerkID       string     `db:"clerk_id" json:"clerkId"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	BloodGroup    string     `db:"blood_group" json:"blood_group"`
	PhoneNumber   string     `db:"phone_number" json:"phone_number"`
	Location      string     `db:"location" json:"location"`
	TotalDonation int        `db:"total_donation" json:"total_donation"`
	LastDonation  *time.Time `db:"last_donation" json:"last_donation"`
}

// PublicProfile is the merged public view: the stored profile plus
// identity-provider fields and the donor's posts, newest first.
type PublicProfile struct {
	Profile
	HasImage     bool   `json:"has_image"`
	ImageURL     string `json:"image_url"`
	LastSignInAt int64  `json:"last_sign_in_at"`
	LastActiveAt int64  `json:"last_active_at"`
	Posts        []Post `json:"posts"`
}

// BloodGroups is the fixed set of accepted blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// NormalizeBloodGroup uppercases a blood group value and validates it against
// the fixed set. The empty string is allowed (group not set yet).
func NormalizeBloodGroup(s string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "" {
		return "", nil
	}
	for _, g := range BloodGroups {
		if normalized == g {
			return normalized, nil
		}
	}
	return "", ErrInvalidBloodGroup
}

// ValidationFailure reports a malformed payload field. It unwraps to the
// underlying decode error for logging while handlers map it to a 400.
type ValidationFailure struct {
	Field string
	Err   error
}

func (e *ValidationFailure) Error() string {
	return "invalid value for " + e.Field
}

func (e *ValidationFailure) Unwrap() error { return e.Err }

var (
	// ErrProfileNotFound is returned when no profile matches the lookup key
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidBloodGroup is returned for values outside the fixed enumeration
	ErrInvalidBloodGroup = errors.New("invalid blood group")

	// ErrInvalidDonationCount is returned when total_donation is not a non-negative integer
	ErrInvalidDonationCount = errors.New("total_donation must be a non-negative integer")

	// ErrInvalidDonationDate is returned when last_donation cannot be parsed as a date
	ErrInvalidDonationDate = errors.New("last_donation is not a valid date")
)
