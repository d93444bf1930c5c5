package application

import "github.com/bnema/ghostreel/internal/domain"

type AccountSummary struct {
	ID              domain.AccountID
	SecretRef       string
	ProxyConfigured bool
	TOTPConfigured  bool
}
