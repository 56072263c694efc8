package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlagbe_backend/internal/httputil"
	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/service"
	"bloodlagbe_backend/internal/transport/http/middleware"
)

const maxUpdateBodySize = 64 * 1024

type ProfileHandler struct {
	profileService   *service.ProfileService
	directoryService *service.DirectoryService
}

func NewProfileHandler(profileService *service.ProfileService, directoryService *service.DirectoryService) *ProfileHandler {
	return &ProfileHandler{
		profileService:   profileService,
		directoryService: directoryService,
	}
}

// ListBloodGroups handles GET /blood-groups
// Public listing of donor profiles, optionally filtered by ?group=.
func (h *ProfileHandler) ListBloodGroups(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")

	summaries, err := h.directoryService.ListProfiles(r.Context(), group)
	if err != nil {
		log.Printf("[ERROR] ListBloodGroups handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list profiles")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summaries)
}

// GetPublicProfile handles GET /profile/{userId}
// Returns the merged public view: stored profile + identity provider
// attributes + the donor's posts.
func (h *ProfileHandler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	clerkID := chi.URLParam(r, "userId")
	if clerkID == "" {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.directoryService.GetPublicProfile(r.Context(), clerkID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "User not found.")
			return
		}
		log.Printf("[ERROR] GetPublicProfile handler: user=%s err=%v", clerkID, err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Me handles GET /me
// Returns the caller's own full profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.directoryService.GetOwnProfile(r.Context(), principal.Email)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "User not found.")
			return
		}
		log.Printf("[ERROR] Me handler: email=%s err=%v", principal.Email, err)
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /me
// Applies a partial profile update for the authenticated owner. The owner's
// email comes from the verified session, never from the payload.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpdateBodySize)
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	err := h.profileService.ApplyPartialUpdate(r.Context(), principal.Email, payload)
	if err != nil {
		var vf *model.ValidationFailure
		switch {
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "User not found.")
		case errors.Is(err, model.ErrInvalidBloodGroup):
			httputil.WriteBadRequest(w, "Invalid blood group")
		case errors.Is(err, model.ErrInvalidDonationCount):
			httputil.WriteBadRequest(w, "total_donation must be a non-negative integer")
		case errors.Is(err, model.ErrInvalidDonationDate):
			httputil.WriteBadRequest(w, "last_donation is not a valid date")
		case errors.As(err, &vf):
			httputil.WriteBadRequest(w, vf.Error())
		default:
			log.Printf("[ERROR] UpdateMe handler: email=%s err=%v", principal.Email, err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
