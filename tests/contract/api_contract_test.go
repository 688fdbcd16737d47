// Package contract exercises the public HTTP contract end to end
// against an in-process router backed by the in-memory store.
package contract

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"github.com/properposts/properposts/internal/auth"
	"github.com/properposts/properposts/internal/handler"
	"github.com/properposts/properposts/internal/middleware"
	"github.com/properposts/properposts/internal/repository"
)

// buildHandler wires the router the way cmd/api does, with the
// in-memory store and no Redis.
func buildHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemory()
	tokens := auth.NewTokens("contract-test-secret", time.Hour)

	h := handler.New()
	authHandler := handler.NewAuthHandler(store, tokens, logger)
	entryHandler := handler.NewEntryHandler(store, logger)
	userHandler := handler.NewUserHandler(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.Get("/", h.Hello)
	r.With(middleware.ValidateBody(middleware.RegisterSchema)).Post("/register", authHandler.Register)
	r.With(middleware.ValidateBody(middleware.LoginSchema)).Post("/login", authHandler.Login)
	r.Get("/entries", entryHandler.List)
	r.Get("/users", userHandler.List)

	authCfg := middleware.AuthConfig{Logger: logger, Tokens: tokens, Store: store}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Get("/content", authHandler.Content)
		r.With(middleware.ValidateBody(middleware.AddEntrySchema)).Post("/add-entry", entryHandler.Create)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

func register(t *testing.T, h http.Handler, fullName, email, password string) {
	t.Helper()
	apitest.New().
		Handler(h).
		Post("/register").
		JSON(map[string]string{
			"fullName":       fullName,
			"email":          email,
			"password":       password,
			"passwordRepeat": password,
		}).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.success", "Your account has been created with "+email)).
		End()
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	result := apitest.New().
		Handler(h).
		Post("/login").
		JSON(map[string]string{"email": email, "password": password}).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.token")).
		Assert(jsonpath.NotPresent("$.user.password")).
		End()

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(result.Response.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestContract_RegisterThenLogin(t *testing.T) {
	h := buildHandler(t)

	register(t, h, "A B", "a@x.com", "secret1")
	login(t, h, "a@x.com", "secret1")
}

func TestContract_RegisterValidation(t *testing.T) {
	h := buildHandler(t)

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(map[string]string{
			"fullName":       "A B",
			"email":          "a@x.com",
			"password":       "secret1",
			"passwordRepeat": "secret2",
		}).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "Passwords do not match!")).
		End()

	// Bad email syntax is caught by the validator before the handler.
	apitest.New().
		Handler(h).
		Post("/register").
		JSON(map[string]string{
			"fullName":       "A B",
			"email":          "not-an-email",
			"password":       "secret1",
			"passwordRepeat": "secret1",
		}).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Present("$.fields.email")).
		End()

	// Neither attempt should have created a user.
	apitest.New().
		Handler(h).
		Get("/users").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 0)).
		End()
}

func TestContract_DuplicateEmail(t *testing.T) {
	h := buildHandler(t)

	register(t, h, "A B", "a@x.com", "secret1")

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(map[string]string{
			"fullName":       "A B Again",
			"email":          "a@x.com",
			"password":       "secret1",
			"passwordRepeat": "secret1",
		}).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal("$.error", "User already exists.")).
		End()

	apitest.New().
		Handler(h).
		Get("/users").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		End()
}

func TestContract_LoginFailuresAreUniform(t *testing.T) {
	h := buildHandler(t)
	register(t, h, "A B", "a@x.com", "secret1")

	wrongPassword := apitest.New().
		Handler(h).
		Post("/login").
		JSON(map[string]string{"email": "a@x.com", "password": "wrong"}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	unknownEmail := apitest.New().
		Handler(h).
		Post("/login").
		JSON(map[string]string{"email": "ghost@x.com", "password": "secret1"}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	first, err := io.ReadAll(wrongPassword.Response.Body)
	require.NoError(t, err)
	second, err := io.ReadAll(unknownEmail.Response.Body)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second),
		"login failures must not reveal whether the email exists")
}

func TestContract_AddEntryRequiresToken(t *testing.T) {
	h := buildHandler(t)

	apitest.New().
		Handler(h).
		Post("/add-entry").
		JSON(map[string]string{"title": "Hi", "content": "1234567890"}).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(h).
		Get("/entries").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 0)).
		End()
}

func TestContract_AddEntryValidation(t *testing.T) {
	h := buildHandler(t)
	register(t, h, "A B", "a@x.com", "secret1")
	token := login(t, h, "a@x.com", "secret1")

	apitest.New().
		Handler(h).
		Post("/add-entry").
		Header("Authorization", "Bearer "+token).
		JSON(map[string]string{"title": strings.Repeat("x", 21), "content": "1234567890"}).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Present("$.fields.title")).
		End()
}

func TestContract_EntryFlow(t *testing.T) {
	h := buildHandler(t)
	register(t, h, "A B", "a@x.com", "secret1")
	token := login(t, h, "a@x.com", "secret1")

	apitest.New().
		Handler(h).
		Post("/add-entry").
		Header("Authorization", "Bearer "+token).
		JSON(map[string]string{"title": "Hi", "content": "1234567890"}).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.title", "Hi")).
		Assert(jsonpath.Present("$.id")).
		End()

	apitest.New().
		Handler(h).
		Post("/add-entry").
		Header("Authorization", "Bearer "+token).
		JSON(map[string]string{"title": "Newest", "content": "0987654321"}).
		Expect(t).
		Status(http.StatusCreated).
		End()

	// Latest entry leads the listing, author joined read-only.
	apitest.New().
		Handler(h).
		Get("/entries").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		Assert(jsonpath.Equal("$[0].title", "Newest")).
		Assert(jsonpath.Equal("$[0].author.fullName", "A B")).
		Assert(jsonpath.Equal("$[0].author.email", "a@x.com")).
		End()
}

func TestContract_ContentProbe(t *testing.T) {
	h := buildHandler(t)
	register(t, h, "A B", "a@x.com", "secret1")
	token := login(t, h, "a@x.com", "secret1")

	apitest.New().
		Handler(h).
		Get("/content").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.content", "You are logged in!")).
		End()

	apitest.New().
		Handler(h).
		Get("/content").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestContract_OpenCORS(t *testing.T) {
	h := buildHandler(t)

	apitest.New().
		Handler(h).
		Method(http.MethodOptions).
		URL("/register").
		Header("Origin", "https://anywhere.example").
		Header("Access-Control-Request-Method", "POST").
		Expect(t).
		Status(http.StatusNoContent).
		HeaderPresent("Access-Control-Allow-Origin").
		End()
}
