package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/properposts/properposts/internal/model"
)

// ErrAuthorNotFound indicates the post's author does not resolve to
// an existing user.
var ErrAuthorNotFound = errors.New("author not found")

// CreatePost inserts a new post into the database.
// The author reference is enforced by a foreign key.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.AuthorID,
		post.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// ListPosts retrieves all posts newest first, each joined with its
// author's name and email. Post IDs are ULIDs, so ordering by ID
// descending is creation order reversed.
func (r *Repository) ListPosts(ctx context.Context) ([]*model.Post, error) {
	query := `
		SELECT p.id, p.title, p.content, p.author_id, p.created_at, u.full_name, u.email
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		var post model.Post
		var author model.PostAuthor
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.AuthorID,
			&post.CreatedAt,
			&author.FullName,
			&author.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Author = &author
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	// PostgreSQL error code 23503 is foreign_key_violation
	return err != nil && contains(err.Error(), "23503")
}
