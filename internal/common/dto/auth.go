package dto

import "github.com/amoylab/ifood-dashboard/internal/apiserver/database"

// RegisterRequest creates a dashboard user
type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	IDUnidade *uint  `json:"id_unidade"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginRequest represents a JSON login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenRequest is the OAuth2 password grant form
type TokenRequest struct {
	GrantType string `form:"grant_type"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserInfo is the public view of the authenticated user
type UserInfo struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	IDUnidade *uint         `json:"id_unidade"`
	Role      database.Role `json:"role"`
}

// NewUserInfo hides the credential fields of a login
func NewUserInfo(l *database.Login) UserInfo {
	return UserInfo{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		IDUnidade: l.IDUnidade,
		Role:      l.Role,
	}
}
