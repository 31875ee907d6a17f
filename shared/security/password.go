package security

import (
	"github.com/matthewhartstonge/argon2"
)

// PasswordParams holds the argon2id cost parameters used when hashing passwords.
type PasswordParams struct {
	TimeCost    uint32
	MemoryCost  uint32 // KiB
	Parallelism uint8
}

// PasswordHasher hashes and verifies passwords using argon2id encoded digests.
// The encoded digest carries its own salt and parameters, so digests created
// with older parameters keep verifying after the configuration changes.
type PasswordHasher struct {
	config argon2.Config
}

// NewPasswordHasher creates a PasswordHasher. Zero values in params fall back
// to the argon2 library defaults.
func NewPasswordHasher(params PasswordParams) *PasswordHasher {
	cfg := argon2.DefaultConfig()
	if params.TimeCost > 0 {
		cfg.TimeCost = params.TimeCost
	}
	if params.MemoryCost > 0 {
		cfg.MemoryCost = params.MemoryCost
	}
	if params.Parallelism > 0 {
		cfg.Parallelism = params.Parallelism
	}

	return &PasswordHasher{config: cfg}
}

// HashPassword returns an encoded digest of password with a fresh random salt.
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded digest.
func (h *PasswordHasher) VerifyPassword(password, digest string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(digest))
}
