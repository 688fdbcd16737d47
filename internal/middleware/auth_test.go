package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/cache"
	"github.com/properposts/properposts/internal/model"
	"github.com/properposts/properposts/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIdentityCache is a map-backed IdentityCache for middleware tests.
type fakeIdentityCache struct {
	entries map[string]*cache.Identity
	hits    int
}

func (f *fakeIdentityCache) GetIdentity(_ context.Context, userID string) (*cache.Identity, error) {
	if id, ok := f.entries[userID]; ok {
		f.hits++
		return id, nil
	}
	return nil, nil
}

func (f *fakeIdentityCache) SetIdentity(_ context.Context, identity *cache.Identity) error {
	f.entries[identity.UserID] = identity
	return nil
}

func setupAuth(t *testing.T) (*auth.Tokens, *repository.Memory, string) {
	t.Helper()

	store := repository.NewMemory()
	user := &model.User{
		ID:        "user-1",
		FullName:  "A B",
		Email:     "a@x.com",
		Password:  "irrelevant",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return auth.NewTokens("test-secret", time.Hour), store, user.ID
}

func authedHandler(t *testing.T, gotUserID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = auth.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	tokens, store, userID := setupAuth(t)

	token, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotUserID string
	mw := Auth(AuthConfig{Logger: discardLogger(), Tokens: tokens, Store: store})(authedHandler(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/content", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotUserID != userID {
		t.Errorf("expected user ID %s in context, got %s", userID, gotUserID)
	}
}

func TestAuth_Failures(t *testing.T) {
	tokens, store, userID := setupAuth(t)

	expired := auth.NewTokens("test-secret", time.Nanosecond)
	expiredToken, err := expired.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	otherSecret := auth.NewTokens("other-secret", time.Hour)
	forged, err := otherSecret.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	ghostToken, err := tokens.Issue("no-such-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer scheme", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
		{"expired token", "Bearer " + expiredToken},
		{"wrong signature", "Bearer " + forged},
		{"deleted user", "Bearer " + ghostToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})
			mw := Auth(AuthConfig{Logger: discardLogger(), Tokens: tokens, Store: store})(handler)

			req := httptest.NewRequest(http.MethodGet, "/content", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			if handlerCalled {
				t.Error("handler should not run on auth failure")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if rec.Body.String() != `{"error":"Invalid or missing token."}` {
				t.Errorf("auth failures must share one body, got %s", rec.Body.String())
			}
		})
	}
}

func TestAuth_CachesIdentity(t *testing.T) {
	tokens, store, userID := setupAuth(t)

	token, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	identityCache := &fakeIdentityCache{entries: make(map[string]*cache.Identity)}
	var gotUserID string
	mw := Auth(AuthConfig{
		Logger: discardLogger(),
		Tokens: tokens,
		Store:  store,
		Cache:  identityCache,
	})(authedHandler(t, &gotUserID))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/content", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if identityCache.hits != 1 {
		t.Errorf("expected second request to hit the cache once, got %d hits", identityCache.hits)
	}
}
