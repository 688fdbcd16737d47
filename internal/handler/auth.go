package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/handler/dto"
	"github.com/properposts/properposts/internal/model"
	"github.com/properposts/properposts/internal/repository"
)

// AuthHandler handles registration, login and the token probe.
type AuthHandler struct {
	store  repository.Store
	tokens *auth.Tokens
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store repository.Store, tokens *auth.Tokens, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register handles POST /register.
// The body is structurally validated by middleware before this runs;
// password agreement and email uniqueness are checked here.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	if req.Password != req.PasswordRepeat {
		writeError(w, http.StatusBadRequest, "Passwords do not match!")
		return
	}

	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "User already exists.")
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		h.internalError(w, r, "lookup user", err)
		return
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, r, "hash password", err)
		return
	}

	user := &model.User{
		ID:        uuid.New().String(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  digest,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		// Concurrent registration can slip past the existence check;
		// the unique constraint reports it as a duplicate.
		if errors.Is(err, repository.ErrEmailExists) {
			writeError(w, http.StatusConflict, "User already exists.")
			return
		}
		h.internalError(w, r, "create user", err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Success: "Your account has been created with " + user.Email,
	})
}

// Login handles POST /login.
// Unknown email and wrong password answer identically so a caller
// cannot probe which accounts exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON.")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.internalError(w, r, "lookup user", err)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.internalError(w, r, "issue token", err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Content handles GET /content, a protected probe that confirms the
// presented token is valid.
func (h *AuthHandler) Content(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"content": "You are logged in!",
	})
}

func (h *AuthHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("internal_error", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "Something went wrong! Try again later.")
}
