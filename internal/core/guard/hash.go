package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const demoHashPrefix = "demo$"

// DemoHasher is a deterministic placeholder that mixes one global salt into
// every hash instead of a per-user one. It must not guard real credentials.
type DemoHasher struct {
	salt string
}

func NewDemoHasher(salt string) *DemoHasher {
	return &DemoHasher{salt: salt}
}

func (h *DemoHasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(h.salt + ":" + password))
	return demoHashPrefix + hex.EncodeToString(sum[:]), nil
}

func (h *DemoHasher) Compare(hash, password string) bool {
	if !strings.HasPrefix(hash, demoHashPrefix) {
		return false
	}
	expected, _ := h.Hash(password)
	return expected == hash
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
