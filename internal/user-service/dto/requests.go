package dto

import (
	"errors"
	"regexp"

	"github.com/viralfx/viralfx-platform/internal/user-service/auth"
)

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrDisplayNameLength = errors.New("displayName must have 2-50 characters")
	ErrPasswordRequired  = errors.New("password required")
	ErrInvalidRole       = errors.New("invalid role")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"` // "user" | "admin", default "user"
}

// Validate aplica as regras de entrada do cadastro, incluindo
// a regra de complexidade de senha
func (r RegisterRequest) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return ErrInvalidEmail
	}
	if n := len(r.DisplayName); n < 2 || n > 50 {
		return ErrDisplayNameLength
	}
	if r.Role != "" && r.Role != "user" && r.Role != "admin" {
		return ErrInvalidRole
	}
	return auth.ValidatePassword(r.Password)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return ErrInvalidEmail
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return ErrPasswordRequired
	}
	return auth.ValidatePassword(r.NewPassword)
}
