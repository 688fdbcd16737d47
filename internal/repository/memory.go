package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/properposts/properposts/internal/model"
)

// Memory is an in-process Store used by tests and anywhere a
// throwaway store is enough. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]*model.User // by ID
	byEmail map[string]string      // email -> ID
	posts   []*model.Post          // insertion order
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// CreateUser stores a user. Returns ErrEmailExists on duplicate email.
func (m *Memory) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return ErrEmailExists
	}

	copied := *user
	m.users[user.ID] = &copied
	m.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByID retrieves a user by ID.
func (m *Memory) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetUserByEmail retrieves a user by email.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *m.users[id]
	return &copied, nil
}

// ListUsers returns all users, oldest first.
func (m *Memory) ListUsers(_ context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// CreatePost stores a post. The author must exist.
func (m *Memory) CreatePost(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[post.AuthorID]; !ok {
		return ErrAuthorNotFound
	}

	copied := *post
	m.posts = append(m.posts, &copied)
	return nil
}

// ListPosts returns all posts newest first with the author joined.
func (m *Memory) ListPosts(_ context.Context) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := make([]*model.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		copied := *m.posts[i]
		if author, ok := m.users[copied.AuthorID]; ok {
			copied.Author = &model.PostAuthor{
				FullName: author.FullName,
				Email:    author.Email,
			}
		}
		posts = append(posts, &copied)
	}

	return posts, nil
}
