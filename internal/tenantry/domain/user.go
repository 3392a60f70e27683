package domain

import (
	"strings"
	"time"
)

// User is the slice of the user directory the core reads. Only Role is ever
// written back.
type User struct {
	ID        string
	Email     string
	Role      GlobalRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail trims and lowercases an address for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailsMatch compares two addresses case-insensitively.
func EmailsMatch(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
