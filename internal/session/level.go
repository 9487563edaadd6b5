package session

import "strings"

// AccessLevel is the ordered user tier gating edit and tag privileges.
type AccessLevel int

const (
	Standard AccessLevel = iota
	Premium
	Admin
)

// ParseAccessLevel maps the server's access_level string to a tier.
// Matching is case-insensitive and exact: unknown values (including
// variants like "Premium-trial") fall back to Standard.
func ParseAccessLevel(s string) AccessLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "premium":
		return Premium
	case "admin":
		return Admin
	default:
		return Standard
	}
}

func (l AccessLevel) String() string {
	switch l {
	case Premium:
		return "Premium"
	case Admin:
		return "Admin"
	default:
		return "Standard"
	}
}

// CanEdit reports whether this tier may edit or tag transcript segments.
func (l AccessLevel) CanEdit() bool {
	return l >= Premium
}
