package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex is intentionally loose; Drive is the authority on addresses
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// driveIDRegex matches the characters Drive uses in file and folder IDs
var driveIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateFolderID validates the shape of a Drive folder ID
func ValidateFolderID(id string) error {
	if id == "" {
		return fmt.Errorf("invalid folder ID: must not be empty")
	}
	if !driveIDRegex.MatchString(id) {
		return fmt.Errorf("invalid folder ID %q: must contain only letters, digits, '-' and '_'", id)
	}
	return nil
}

// ValidateEmail validates an identity email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// NormalizeDomain returns the owning domain with a leading "@" so that
// suffix comparisons against email addresses cannot match a partial label
func NormalizeDomain(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" || domain == "@" {
		return "", fmt.Errorf("invalid owning domain: must not be empty")
	}
	if !strings.HasPrefix(domain, "@") {
		domain = "@" + domain
	}
	if strings.Count(domain, "@") != 1 || strings.ContainsAny(domain, " \t") {
		return "", fmt.Errorf("invalid owning domain %q", domain)
	}
	return strings.ToLower(domain), nil
}

// EmailInDomain reports whether email belongs to the normalized domain
func EmailInDomain(email, domain string) bool {
	if domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(domain))
}

// SameIdentity compares two email identities case-insensitively
func SameIdentity(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
