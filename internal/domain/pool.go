package domain

import (
	"fmt"
	"strings"
)

// AccountStatus is a point-in-time view of one pool member. Building it never
// triggers authentication.
type AccountStatus struct {
	ID              AccountID
	Authenticated   bool
	ProxyConfigured bool
	InUse           bool
}

type PoolStatus struct {
	Accounts []AccountStatus
	Cursor   int
}

func (p PoolStatus) AuthenticatedCount() int {
	count := 0
	for _, account := range p.Accounts {
		if account.Authenticated {
			count++
		}
	}

	return count
}

// NormalizeIdentities trims, drops empty entries and removes duplicates while
// preserving first-seen order. A leading "@" is stripped. Any remaining entry
// that is not a valid handle fails the whole call.
func NormalizeIdentities(values []string) ([]string, error) {
	normalized := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimPrefix(strings.TrimSpace(value), "@")
		if trimmed == "" {
			continue
		}
		if err := ValidateIdentity(trimmed); err != nil {
			return nil, err
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}

	return normalized, nil
}

// ValidateIdentity accepts handles made of letters, digits, "." "_" and "-".
// Handles end up in file names, so separators and dot-only names are refused.
func ValidateIdentity(identity string) error {
	if identity == "" || strings.Trim(identity, ".") == "" {
		return fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}
	for _, r := range identity {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
		}
	}

	return nil
}
