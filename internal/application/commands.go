package application

import "github.com/bnema/ghostreel/internal/domain"

type SetCredentialsCommand struct {
	ID       domain.AccountID
	Secret   string
	Proxy    string
	TOTPSeed string
}
