// Package auth holds credential hashing, bearer token issue and validation,
// the login flow and the ownership checks gating mutations.
package auth

import "golang.org/x/crypto/bcrypt"

// Hasher turns plaintext passwords into salted digests and verifies them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// BcryptHasher hashes with bcrypt at Cost. A zero Cost uses bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range.
func NewBcryptHasher(cost int) BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt digest of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares the digest with its possible plaintext equivalent.
func (h BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
