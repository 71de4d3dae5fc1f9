package services

import (
	"regexp"
	"strings"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/gateway"
)

var (
	uppercase  = regexp.MustCompile(`[A-Z]`)
	lowercase  = regexp.MustCompile(`[a-z]`)
	digit      = regexp.MustCompile(`[0-9]`)
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ]{9,15}$`)
)

// ValidatePassword returns a message describing the first rule password
// breaks, or "".
func ValidatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	if !uppercase.MatchString(password) {
		return "Password must contain at least one uppercase letter"
	}
	if !lowercase.MatchString(password) {
		return "Password must contain at least one lowercase letter"
	}
	if !digit.MatchString(password) {
		return "Password must contain at least one digit"
	}
	return ""
}

func ValidateEmailFormat(email string) bool {
	return emailRegex.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

func ValidateSignUp(req gateway.SignUpRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return apperrors.Validation("Full name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.Validation("Email is required")
	}
	if !ValidateEmailFormat(req.Email) {
		return apperrors.Validation("Invalid email format")
	}
	if msg := ValidatePassword(req.Password); msg != "" {
		return apperrors.Validation("%s", msg)
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" && !phoneRegex.MatchString(phone) {
		return apperrors.Validation("Invalid phone number")
	}
	return nil
}
