package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadOperatorSecret = errors.New("operator secret mismatch")

// OperatorCredential guards the token-minting endpoint. Principals prove
// possession of the marketplace operator secret to obtain a session token;
// only the bcrypt hash of the secret is ever configured or stored.
type OperatorCredential struct {
	hash []byte
}

func NewOperatorCredential(bcryptHash string) *OperatorCredential {
	return &OperatorCredential{hash: []byte(bcryptHash)}
}

// HashSecret produces a bcrypt hash suitable for the config file.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks a presented secret against the configured hash.
func (c *OperatorCredential) Verify(secret string) error {
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(secret)); err != nil {
		return ErrBadOperatorSecret
	}
	return nil
}
