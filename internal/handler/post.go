package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"bloodlagbe_backend/internal/httputil"
	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/service"
	"bloodlagbe_backend/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
// Creates a new post attributed to the authenticated principal.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), principal, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyContent):
			httputil.WriteBadRequest(w, "Post content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Post content too long")
		default:
			log.Printf("[ERROR] Create post handler: user=%s err=%v", principal.ClerkID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": post.ID})
}

// ListRecent handles GET /posts
// Returns the latest posts across all authors, newest first.
func (h *PostHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := model.DefaultRecentPostsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	posts, err := h.postService.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] ListRecent handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// MyPosts handles GET /me/posts
// Returns the caller's own posts, newest first.
func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	posts, err := h.postService.ListByAuthor(r.Context(), principal.Email)
	if err != nil {
		log.Printf("[ERROR] MyPosts handler: email=%s err=%v", principal.Email, err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}
