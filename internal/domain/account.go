package domain

import (
	"fmt"
	"strings"
)

type AccountID string

// Account is a credential set loaded once at startup. It is never mutated.
type Account struct {
	ID        AccountID
	Secret    string
	SecretRef string
	Proxy     string
	TOTPSeed  string
}

func (a Account) Validate() error {
	if strings.TrimSpace(string(a.ID)) == "" {
		return fmt.Errorf("identity is required")
	}
	if a.Secret == "" && strings.TrimSpace(a.SecretRef) == "" {
		return fmt.Errorf("account %s: secret or secret_ref is required", a.ID)
	}

	return nil
}

func (a Account) HasProxy() bool {
	return strings.TrimSpace(a.Proxy) != ""
}

func (a Account) HasTOTP() bool {
	return strings.TrimSpace(a.TOTPSeed) != ""
}
