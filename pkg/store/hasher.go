package store

import "golang.org/x/crypto/bcrypt"

// PasswordHasher turns a password into a verification token and checks
// passwords against stored tokens
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(token, password string) bool
}

// BcryptHasher produces salted bcrypt tokens
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher with the given cost. Costs outside the
// range bcrypt accepts fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns a bcrypt token for password
func (h *BcryptHasher) Hash(password string) (string, error) {
	token, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// Verify reports whether password produces token
func (h *BcryptHasher) Verify(token, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(token), []byte(password)) == nil
}
