// Package token issues and verifies the three-segment session tokens:
// base64url(header).base64url(payload).signature.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/casedesk/session-guard/internal/core/domain"
)

const (
	DefaultIssuer   = "casedesk"
	DefaultAudience = "casedesk-app"
)

// The header never changes, so it is encoded once.
var encodedHeader = EncodeSegment([]byte(`{"alg":"HS256","typ":"JWT"}`))

var (
	errSegments  = errors.New("token must have three segments")
	errSignature = errors.New("signature mismatch")
	errExpired   = errors.New("token expired")
	errNoExpiry  = errors.New("payload has no exp claim")
)

// Codec builds and parses tokens. It is safe for concurrent use.
type Codec struct {
	signer   Signer
	issuer   string
	audience string
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Codec)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func WithIssuer(iss string) Option {
	return func(c *Codec) {
		if iss != "" {
			c.issuer = iss
		}
	}
}

func WithAudience(aud string) Option {
	return func(c *Codec) {
		if aud != "" {
			c.audience = aud
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Codec) { c.log = log }
}

func NewCodec(signer Signer, opts ...Option) *Codec {
	c := &Codec{
		signer:   signer,
		issuer:   DefaultIssuer,
		audience: DefaultAudience,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now exposes the codec clock so collaborators share one notion of time.
func (c *Codec) Now() time.Time { return c.now() }

// Issue signs claims into a token valid for ParseExpiresIn(expiresIn).
// Reserved keys in claims are overwritten.
func (c *Codec) Issue(claims domain.Claims, expiresIn string) (string, error) {
	now := c.now().Unix()

	payload := claims.Clone()
	payload[domain.ClaimIssuedAt] = now
	payload[domain.ClaimExpiresAt] = now + int64(ParseExpiresIn(expiresIn)/time.Second)
	payload[domain.ClaimIssuer] = c.issuer
	payload[domain.ClaimAudience] = c.audience

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	signingInput := encodedHeader + "." + EncodeSegment(raw)
	sig, err := c.signer.Sign(signingInput)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signingInput + "." + sig, nil
}

// Verify returns the full payload of a current, well-formed token. Every
// failure collapses into domain.ErrTokenInvalid; the cause is only logged.
func (c *Codec) Verify(tok string) (domain.Claims, error) {
	claims, exp, err := c.parse(tok)
	if err == nil && exp <= c.now().Unix() {
		err = errExpired
	}
	if err != nil {
		c.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// Inspect reads the timing of a well-formed token. Unlike Verify it does not
// fail on expiry; Valid reports whether the token is still current.
func (c *Codec) Inspect(tok string) (domain.TokenInfo, error) {
	claims, exp, err := c.parse(tok)
	if err != nil {
		c.log.Debug().Err(err).Msg("token inspection failed")
		return domain.TokenInfo{}, domain.ErrTokenInvalid
	}
	iat, _ := claims.Int64(domain.ClaimIssuedAt)
	now := c.now()
	return domain.TokenInfo{
		Valid:           exp > now.Unix(),
		IssuedAt:        time.Unix(iat, 0).UTC(),
		ExpiresAt:       time.Unix(exp, 0).UTC(),
		TimeUntilExpiry: exp*1000 - now.UnixMilli(),
	}, nil
}

func (c *Codec) parse(tok string) (domain.Claims, int64, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, 0, errSegments
	}

	header, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, 0, fmt.Errorf("decode header: %w", err)
	}
	if !json.Valid(header) {
		return nil, 0, errors.New("header is not valid JSON")
	}

	raw, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, 0, fmt.Errorf("decode payload: %w", err)
	}

	if !c.signer.Verify(parts[0]+"."+parts[1], parts[2]) {
		return nil, 0, errSignature
	}

	var claims domain.Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, 0, fmt.Errorf("decode payload: %w", err)
	}
	if claims == nil {
		return nil, 0, errors.New("payload is not an object")
	}

	exp, ok := claims.Int64(domain.ClaimExpiresAt)
	if !ok {
		return nil, 0, errNoExpiry
	}
	return claims, exp, nil
}
