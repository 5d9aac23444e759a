package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordStrength is the score below which registration is refused.
const MinPasswordStrength = 0.5

// PasswordStrength scores a password from 0 to 1 in quarter points: length
// of at least 8, an uppercase letter, a digit, and a symbol.
func PasswordStrength(password string) float64 {
	if password == "" {
		return 0
	}

	var score float64
	if len(password) >= 8 {
		score += 0.25
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSymbol = true
		}
	}
	if hasUpper {
		score += 0.25
	}
	if hasDigit {
		score += 0.25
	}
	if hasSymbol {
		score += 0.25
	}
	return score
}

// StrengthLabel renders a password score for user-facing messages.
func StrengthLabel(score float64) string {
	switch {
	case score == 0:
		return ""
	case score < 0.25:
		return "Very Weak"
	case score < 0.5:
		return "Weak"
	case score < 0.75:
		return "Moderate"
	case score < 1:
		return "Strong"
	default:
		return "Very Strong"
	}
}

// ValidateLogin checks login input before any network call.
func ValidateLogin(identifier, password string) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("email or username is required")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateRegistration checks registration input before any network call:
// required fields, email shape, minimum password strength, and confirmation
// match.
func ValidateRegistration(username, email, password, confirm string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("please enter a valid email address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if PasswordStrength(password) < MinPasswordStrength {
		return fmt.Errorf("please use a stronger password with uppercase letters, numbers, and special characters")
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}
