package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid minimum length", "abc123xy", nil},
		{"valid phrase", "my secret password", nil},
		{"valid long", strings.Repeat("a", 128), nil},
		{"valid special chars", "P@ssw0rd!123", nil},

		{"too short 7 chars", "abcdefg", ErrPasswordTooShort},
		{"too short empty", "", ErrPasswordTooShort},

		{"too long", strings.Repeat("a", 129), ErrPasswordTooLong},

		{"common 12345678", "12345678", ErrPasswordCommon},
		{"common password", "password", ErrPasswordCommon},
		{"common uppercase", "PASSWORD", ErrPasswordCommon},
		{"common football", "football", ErrPasswordCommon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "a fine long passphrase"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash does not look like bcrypt: %s", hash)
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword() accepted a wrong password")
	}

	// bcrypt salts, so hashing twice must differ.
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() second call error = %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same password were identical")
	}
}
