package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"bloodlagbe_backend/internal/clerk"
	"bloodlagbe_backend/internal/httputil"
	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/service"
)

const maxWebhookBodySize = 256 * 1024

// WebhookHandler receives identity-provider lifecycle events. Any processing
// failure answers 400 so the provider redelivers; redelivery is safe because
// profile creation is idempotent.
type WebhookHandler struct {
	profileService *service.ProfileService
	signingSecret  string
}

func NewWebhookHandler(profileService *service.ProfileService, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		profileService: profileService,
		signingSecret:  signingSecret,
	}
}

// HandleClerk handles POST /webhooks/clerk
func (h *WebhookHandler) HandleClerk(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		httputil.WriteBadRequest(w, "Failed to read request body")
		return
	}

	if h.signingSecret != "" {
		if err := clerk.VerifyWebhook(h.signingSecret, r.Header, body); err != nil {
			log.Printf("[Webhook] Signature verification failed: %v", err)
			httputil.WriteBadRequest(w, "Invalid webhook signature")
			return
		}
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		httputil.WriteBadRequest(w, "Invalid webhook payload")
		return
	}

	// Only user.created is acted upon; every other type is acknowledged.
	if event.Type != model.WebhookUserCreated {
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if len(event.Data.EmailAddresses) == 0 || event.Data.EmailAddresses[0].EmailAddress == "" {
		httputil.WriteBadRequest(w, "Event has no email address")
		return
	}

	_, err = h.profileService.CreateIfAbsent(r.Context(), model.IdentityEvent{
		ClerkID:   event.Data.ID,
		FirstName: event.Data.FirstName,
		LastName:  event.Data.LastName,
		Email:     event.Data.EmailAddresses[0].EmailAddress,
	})
	if err != nil {
		log.Printf("[Webhook] Failed to process %s: %v", event.Type, err)
		httputil.WriteBadRequest(w, "Failed to process event")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
