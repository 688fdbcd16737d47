package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/handler/dto"
	"github.com/properposts/properposts/internal/model"
	"github.com/properposts/properposts/internal/repository"
)

// EntryHandler handles post creation and listing.
type EntryHandler struct {
	store  repository.Store
	logger *slog.Logger
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(store repository.Store, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		store:  store,
		logger: logger,
	}
}

// Create handles POST /add-entry.
// Runs behind the auth middleware; the author is always the token's
// subject, never taken from the body.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	post := &model.Post{
		ID:        ulid.Make().String(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  auth.MustUserIDFromContext(r.Context()),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreatePost(r.Context(), post); err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			// The account vanished between token check and insert.
			writeError(w, http.StatusUnauthorized, "Invalid or missing token.")
			return
		}
		h.logger.Error("internal_error", "op", "create post", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add entry.")
		return
	}

	h.logger.Info("entry_created",
		"post_id", post.ID,
		"author_id", post.AuthorID,
	)

	writeJSON(w, http.StatusCreated, post)
}

// List handles GET /entries.
// Returns every post newest first, each joined with its author's name
// and email. Deliberately unauthenticated; see DESIGN.md.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("internal_error", "op", "list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not fetch entries.")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}
