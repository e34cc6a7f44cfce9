package auth

import "strings"

// AllowList is the set of identities permitted to use the owner portal.
//
// This is a convenience gate for the UI. The record store enforces write
// permission itself through row-level security; an identity that slips past
// this list still cannot persist anything the store does not authorize.
type AllowList []string

// ParseAllowList splits a comma-separated list of emails, trimming whitespace
// and lowercasing. Empty entries are dropped.
func ParseAllowList(raw string) AllowList {
	var list AllowList
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			list = append(list, part)
		}
	}
	return list
}

// Allows reports whether the identity may use the portal. An empty list admits
// every authenticated identity; that open-admin behavior is deliberate, not a
// missing check.
func (l AllowList) Allows(email string) bool {
	if email == "" {
		return false
	}
	if len(l) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range l {
		if allowed == email {
			return true
		}
	}
	return false
}
