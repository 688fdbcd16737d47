// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// The password hash is excluded from JSON so it can never leak
// through an API response.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
