package auth

import "github.com/localbasket/localbasket-backend/internal/users"

// RegisterInput creates an account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginInput authenticates an account.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionDTO is the issued token plus the account it belongs to.
type SessionDTO struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	User        users.UserDTO `json:"user"`
}
