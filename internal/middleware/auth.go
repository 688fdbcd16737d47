package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/cache"
	"github.com/properposts/properposts/internal/repository"
)

// IdentityCache caches the user-existence lookup that follows token
// verification. Implemented by cache.Cache; may be nil (no caching).
type IdentityCache interface {
	GetIdentity(ctx context.Context, userID string) (*cache.Identity, error)
	SetIdentity(ctx context.Context, identity *cache.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.Tokens
	Store  repository.Store
	Cache  IdentityCache
}

// Auth returns a middleware that gates routes behind a valid session
// token. It extracts the bearer token from the Authorization header,
// verifies signature and expiry, and confirms the subject still
// resolves to an existing user. On success the user ID is injected
// into the request context; on any failure the handler never runs and
// the client gets a uniform 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			userID, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			// Check cache first
			if cfg.Cache != nil {
				identity, _ := cfg.Cache.GetIdentity(r.Context(), userID)
				if identity != nil {
					ctx := auth.ContextWithUserID(r.Context(), userID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			// Cache miss - a token may outlive its user, so confirm
			// the account still exists.
			user, err := cfg.Store.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					logAuthFailure(cfg.Logger, r, "unknown_user")
				} else {
					cfg.Logger.Error("store error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeAuthError(w)
				return
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetIdentity(r.Context(), &cache.Identity{
					UserID:   user.ID,
					FullName: user.FullName,
					Email:    user.Email,
				})
			}

			ctx := auth.ContextWithUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures so a caller cannot tell
// a missing token from an expired or forged one.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing token."}`))
}
