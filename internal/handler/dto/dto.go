// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/properposts/properposts/internal/model"

// RegisterRequest represents the request body for POST /register.
type RegisterRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"passwordRepeat"`
}

// LoginRequest represents the request body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AddEntryRequest represents the request body for POST /add-entry.
type AddEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RegisterResponse confirms a created account.
type RegisterResponse struct {
	Success string `json:"success"`
}

// LoginResponse carries the session token and the user it belongs to.
// The user's password hash never serializes (json:"-" on the model).
type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// UserResponse is the public projection of a user for GET /users.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// ToUserResponse converts a user to its public projection.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	}
}

// ToUserListResponse converts users to their public projections.
func ToUserListResponse(users []*model.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, ToUserResponse(user))
	}
	return result
}

// ErrorResponse is the body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
