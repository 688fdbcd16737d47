package model

import "time"

// PostAuthor is the read-only author projection joined onto a post
// when listing entries.
type PostAuthor struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Post represents a user-authored entry.
// IDs are ULIDs, so lexicographic order matches creation order.
type Post struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	AuthorID  string      `json:"authorId"`
	Author    *PostAuthor `json:"author,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
