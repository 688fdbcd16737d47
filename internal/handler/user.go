package handler

import (
	"log/slog"
	"net/http"

	"github.com/properposts/properposts/internal/handler/dto"
	"github.com/properposts/properposts/internal/repository"
)

// UserHandler handles the public users listing.
type UserHandler struct {
	store  repository.Store
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store repository.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

// List handles GET /users.
// Returns id, email and fullName for every user; password hashes stay
// out of the projection entirely.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("internal_error", "op", "list users", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not fetch users.")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}
