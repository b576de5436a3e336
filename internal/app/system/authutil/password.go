// Package authutil provides password hashing and validation for team
// member accounts. Passwords are set when an admin invites a writer and
// checked at login; bcrypt does the rest.
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	// bcrypt cost 12 keeps a hash around a quarter second on current
	// hardware, slow enough for credential stuffing to hurt.
	BcryptCost = 12
)

// Validation errors. The messages are user-facing and render directly in
// forms and API responses.
var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters.")
	ErrPasswordTooLong  = errors.New("Password must be less than 128 characters.")
	ErrPasswordCommon   = errors.New("This password is too common. Please choose a different one.")
)

// commonPasswords blocks the usual suspects outright. Matched
// case-insensitively.
var commonPasswords = map[string]bool{
	"12345678":   true,
	"123456789":  true,
	"1234567890": true,
	"password":   true,
	"password1":  true,
	"passw0rd":   true,
	"qwertyuiop": true,
	"qwerty123":  true,
	"abc12345":   true,
	"11111111":   true,
	"00000000":   true,
	"iloveyou":   true,
	"letmein1":   true,
	"welcome1":   true,
	"sunshine":   true,
	"princess":   true,
	"football":   true,
	"baseball":   true,
	"superman":   true,
	"starwars":   true,
}

// PasswordRules describes the rules for display on the writer-invite form.
func PasswordRules() string {
	return "Password must be at least 8 characters and cannot be a common password like \"12345678\" or \"password\"."
}

// ValidatePassword returns nil for an acceptable password or one of the
// user-facing errors above.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword bcrypt-hashes a password. Validate first; this does not.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
