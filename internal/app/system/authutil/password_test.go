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
		{"valid short", "abc123x", nil},
		{"valid medium", "mySecurePassword", nil},
		{"valid long", strings.Repeat("a", 128), nil},
		{"valid with special chars", "P@ssw0rd!123", nil},
		{"valid with spaces", "my secret password", nil},

		{"too short 5 chars", "abcde", ErrPasswordTooShort},
		{"too short 1 char", "a", ErrPasswordTooShort},
		{"too short empty", "", ErrPasswordTooShort},

		{"too long", strings.Repeat("a", 129), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword_BoundaryLengths(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr error
	}{
		{"exactly min-1", MinPasswordLength - 1, ErrPasswordTooShort},
		{"exactly min", MinPasswordLength, nil},
		{"exactly max", MaxPasswordLength, nil},
		{"exactly max+1", MaxPasswordLength + 1, ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := strings.Repeat("x", tt.length)
			err := ValidatePassword(pwd)
			if err != tt.wantErr {
				t.Errorf("ValidatePassword(len=%d) = %v, want %v", tt.length, err, tt.wantErr)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	password := "mySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "" {
		t.Error("HashPassword() returned empty hash")
	}
	if hash == password {
		t.Error("HashPassword() returned unhashed password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword() hash does not appear to be bcrypt: %s", hash)
	}

	// Same password should produce different hashes (bcrypt uses salt)
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() second call error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes for same password (due to salt)")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"wrong password", "wrongPassword456", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", password, "", false},
		{"invalid hash format", password, "not-a-valid-hash", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckPassword(tt.password, tt.hash)
			if got != tt.want {
				t.Errorf("CheckPassword(%q, hash) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	passwords := []string{
		"simple123",
		"Complex!P@ssw0rd#123",
		"with spaces in it",
		"unicode: éàü",
		strings.Repeat("a", 50), // well under the bcrypt 72-byte limit
	}

	for _, password := range passwords {
		t.Run(password[:min(20, len(password))], func(t *testing.T) {
			hash, err := HashPassword(password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if !CheckPassword(password, hash) {
				t.Error("CheckPassword() failed to verify correct password")
			}
			if CheckPassword(password+"x", hash) {
				t.Error("CheckPassword() incorrectly verified wrong password")
			}
		})
	}
}
