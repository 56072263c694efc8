package model

// Principal is the authenticated end-user identity extracted from a verified
// session token. It is the only source of the caller's email and clerk id;
// request payloads are never trusted for either.
type Principal struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
}

// PublicUser holds the identity-provider-sourced attributes merged into a
// public profile view. LastActiveAt is a millisecond epoch, as the provider
// reports it.
type PublicUser struct {
	HasImage     bool   `json:"has_image"`
	ImageURL     string `json:"image_url"`
	LastActiveAt int64  `json:"last_active_at"`
}

// IdentityEvent is the normalized payload of a provider "user.created"
// notification, the one-time creation signal for a profile.
type IdentityEvent struct {
	ClerkID   string
	FirstName string
	LastName  string
	Email     string
}

// Webhook event types. Only user.created is acted upon; everything else is
// acknowledged and ignored.
const (
	WebhookUserCreated = "user.created"
)

// WebhookEvent is the identity provider's webhook envelope.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data WebhookUserData `json:"data"`
}

// WebhookUserData carries the subset of the provider's user object that the
// reconciler consumes.
type WebhookUserData struct {
	ID             string                `json:"id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	EmailAddresses []WebhookEmailAddress `json:"email_addresses"`
}

// WebhookEmailAddress is one entry of the provider's email address list; the
// first entry is the principal's primary address.
type WebhookEmailAddress struct {
	EmailAddress string `json:"email_address"`
}
