package domain

import (
	"strings"
	"time"
)

// UserProfile holds the display identity for an owner key (email).
// DisplayName is denormalized onto leaderboard entries; renames must be
// repaired across every entry sharing the owner's previous name.
type UserProfile struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// OrganizationFromEmail derives an organization name from the email domain.
// "a@acme.com" becomes "acme". Returns empty for malformed addresses.
func OrganizationFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	host := email[at+1:]
	if dot := strings.Index(host, "."); dot > 0 {
		host = host[:dot]
	}
	return strings.ToLower(host)
}
