package auth

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

var (
	ErrPasswordTooShort  = errors.New("password must have at least 8 characters")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
)

// RE2 não suporta lookahead; a regra de complexidade vira uma classe por regex
var (
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasSpecial = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// ValidatePassword aplica a regra de complexidade:
// mínimo 8 caracteres com maiúscula, minúscula, dígito e caractere especial
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if !hasUpper.MatchString(pw) {
		return ErrPasswordNoUpper
	}
	if !hasLower.MatchString(pw) {
		return ErrPasswordNoLower
	}
	if !hasDigit.MatchString(pw) {
		return ErrPasswordNoDigit
	}
	if !hasSpecial.MatchString(pw) {
		return ErrPasswordNoSpecial
	}
	return nil
}

// HashPassword gera o hash bcrypt do password
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compara um password com o hash armazenado
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
