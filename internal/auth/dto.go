package auth

import (
	"github.com/google/uuid"

	"github.com/billy17-netizen/posvougher-sub002/internal/users"
)

// LoginRequest carries the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StoreSummary is the store metadata returned alongside tokens.
type StoreSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
	IsActive bool      `json:"isActive"`
}

// TokenPair bundles the credentials a client holds between requests.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse contains the tokens, the user, and their store list.
type LoginResponse struct {
	TokenPair
	Stores []StoreSummary `json:"stores"`
	User   *users.UserDTO `json:"user"`
}

// RefreshRequest rotates a session. The access token may be expired.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SwitchStoreResponse carries the re-scoped tokens and target store.
type SwitchStoreResponse struct {
	TokenPair
	Store StoreSummary `json:"store"`
}
