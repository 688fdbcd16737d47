package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/properposts/properposts/internal/model"
	"github.com/properposts/properposts/internal/testutil"
)

// setupRepo connects to the test database, resets the schema and
// serializes against other integration tests. Skips when
// DATABASE_URL is not set.
func setupRepo(t *testing.T) (*Repository, context.Context) {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo, ctx
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := &model.User{
		ID:        uuid.New().String(),
		FullName:  "Alice Wonderland",
		Email:     "alice@example.com",
		Password:  "$2a$10$fakehashfakehashfakehash",
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	dup := &model.User{
		ID:        uuid.New().String(),
		FullName:  "Alice Again",
		Email:     "alice@example.com",
		Password:  "$2a$10$otherhashotherhashother",
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected exactly 1 user, got %d", len(users))
	}
}

func TestRepository_GetUserByEmail(t *testing.T) {
	repo, ctx := setupRepo(t)

	user := &model.User{
		ID:        uuid.New().String(),
		FullName:  "Willy Wonka",
		Email:     "ww@example.com",
		Password:  "$2a$10$fakehashfakehashfakehash",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := repo.GetUserByEmail(ctx, "ww@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if found.ID != user.ID || found.FullName != "Willy Wonka" {
		t.Errorf("unexpected user: %+v", found)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRepository_Posts(t *testing.T) {
	repo, ctx := setupRepo(t)

	author := &model.User{
		ID:        uuid.New().String(),
		FullName:  "Alice Wonderland",
		Email:     "alice@example.com",
		Password:  "$2a$10$fakehashfakehashfakehash",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		post := &model.Post{
			ID:        ulid.Make().String(),
			Title:     "Hi",
			Content:   "some content here",
			AuthorID:  author.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreatePost(ctx, post); err != nil {
			t.Fatalf("create post failed: %v", err)
		}
		ids = append(ids, post.ID)
		time.Sleep(2 * time.Millisecond) // distinct ULID timestamps
	}

	posts, err := repo.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}

	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	// Newest first: the last created post leads the listing.
	if posts[0].ID != ids[2] {
		t.Errorf("expected newest post %s first, got %s", ids[2], posts[0].ID)
	}

	if posts[0].Author == nil || posts[0].Author.Email != "alice@example.com" {
		t.Errorf("expected joined author, got %+v", posts[0].Author)
	}
}

func TestRepository_CreatePost_MissingAuthor(t *testing.T) {
	repo, ctx := setupRepo(t)

	post := &model.Post{
		ID:        ulid.Make().String(),
		Title:     "Hi",
		Content:   "some content here",
		AuthorID:  uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreatePost(ctx, post); !errors.Is(err, ErrAuthorNotFound) {
		t.Errorf("expected ErrAuthorNotFound, got %v", err)
	}
}
