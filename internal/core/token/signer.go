package token

import (
	"crypto/sha256"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer computes and checks the third token segment over
// "<encoded header>.<encoded payload>".
type Signer interface {
	Sign(data string) (string, error)
	Verify(data, signature string) bool
}

// DemoSigner derives a deterministic signature from the data and a fixed
// shared value. It is not a MAC: anyone holding the shared value, which
// ships with the client, can forge tokens. Verify is a plain string
// comparison and is not constant-time.
type DemoSigner struct {
	shared string
}

func NewDemoSigner(shared string) *DemoSigner {
	return &DemoSigner{shared: shared}
}

func (s *DemoSigner) Sign(data string) (string, error) {
	sum := sha256.Sum256([]byte(data + "." + s.shared))
	return EncodeSegment(sum[:]), nil
}

func (s *DemoSigner) Verify(data, signature string) bool {
	expected, _ := s.Sign(data)
	return expected == signature
}

// HMACSigner signs with HMAC-SHA256 through golang-jwt, producing tokens
// that standard JWT libraries accept.
type HMACSigner struct {
	key []byte
}

var errEmptyKey = errors.New("token: hmac key is empty")

func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errEmptyKey
	}
	return &HMACSigner{key: []byte(secret)}, nil
}

func (s *HMACSigner) Sign(data string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(data, s.key)
	if err != nil {
		return "", err
	}
	return EncodeSegment(sig), nil
}

func (s *HMACSigner) Verify(data, signature string) bool {
	sig, err := DecodeSegment(signature)
	if err != nil {
		return false
	}
	return jwt.SigningMethodHS256.Verify(data, sig, s.key) == nil
}
