package dto

import (
	"strings"

	"github.com/cyberio/backend/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.Email) == "" {
		errors = append(errors, "email is required")
	}
	if r.Password == "" {
		errors = append(errors, "password is required")
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SocialLoginRequest struct {
	Provider string `json:"provider"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

func (r *SocialLoginRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.Provider) == "" {
		errors = append(errors, "provider is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		errors = append(errors, "email is required")
	}

	return errors
}

type LogoutRequest struct {
	SessionID string `json:"sessionId"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func UserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

type AuthResponse struct {
	Success   bool         `json:"success"`
	User      UserResponse `json:"user"`
	SessionID string       `json:"sessionId"`
	Message   string       `json:"message"`
}

type ProfileResponse struct {
	User UserResponse `json:"user"`
}
