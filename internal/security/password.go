package security

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// ValidatePassword enforces the registration password policy:
// at least 8 characters, one digit and one uppercase letter.
// Returns a per-rule message for each failed rule, or nil when the
// password is acceptable.
func ValidatePassword(plain string) []string {
	var problems []string

	if len(plain) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}

	hasDigit := false
	hasUpper := false

	for _, r := range plain {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}

	if !hasDigit {
		problems = append(problems, "Password must contain at least one number")
	}

	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}

	return problems
}
