/*
hasher.go - Password hashing boundary

PURPOSE:

	The admin service never stores or logs plaintext; it hands passwords to
	a Hasher and persists the opaque result. The production implementation
	is bcrypt.
*/
package accounts

import "golang.org/x/crypto/bcrypt"

// Hasher turns a plaintext password into an opaque stored credential.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) bool
}

// BcryptHasher hashes with bcrypt at the default cost.
type BcryptHasher struct {
	Cost int // zero means bcrypt.DefaultCost
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
