package domain

import (
	"errors"
	"fmt"
	"strings"
)

// SecretKind names which credential of an account a secret key holds.
type SecretKind string

const (
	SecretPassword SecretKind = "password"
	SecretTOTP     SecretKind = "totp"
)

const accountSecretPrefix = "ghost/accounts/"

// SecretKey is where a credential of an account lives in a secret store.
func SecretKey(id AccountID, kind SecretKind) string {
	return accountSecretPrefix + string(id) + "/" + string(kind)
}

// ParseSecretKey splits an account secret key built by SecretKey. ok is false
// for keys outside the account namespace.
func ParseSecretKey(key string) (id AccountID, kind SecretKind, ok bool, err error) {
	rest, found := strings.CutPrefix(key, accountSecretPrefix)
	if !found {
		return "", "", false, nil
	}

	identity, name, found := strings.Cut(rest, "/")
	if !found {
		return "", "", true, fmt.Errorf("secret key %q: missing credential kind", key)
	}
	if err := ValidateIdentity(identity); err != nil {
		return "", "", true, fmt.Errorf("secret key %q: %w", key, err)
	}

	switch SecretKind(name) {
	case SecretPassword, SecretTOTP:
		return AccountID(identity), SecretKind(name), true, nil
	default:
		return "", "", true, fmt.Errorf("secret key %q: unknown credential kind %q", key, name)
	}
}

// ValidateSecretKey accepts slash separated keys whose segments are plain
// names that do not start with "-". Keys in the account namespace must also name a valid account and a
// known credential kind.
func ValidateSecretKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("secret key is empty")
	}
	if strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\\\x00\n\r") {
		return fmt.Errorf("invalid secret key %q", key)
	}
	for segment := range strings.SplitSeq(key, "/") {
		if strings.TrimSpace(segment) == "" || strings.Trim(segment, ".") == "" || strings.HasPrefix(segment, "-") {
			return fmt.Errorf("invalid secret key %q", key)
		}
	}

	_, _, _, err := ParseSecretKey(key)
	return err
}
