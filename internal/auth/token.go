// ABOUTME: JWT session credential encoding and decoding for taskdeck
// ABOUTME: Uses HS256 signing with a process-wide secret configured at startup

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum length in bytes for the signing secret.
// HS256 secrets shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// Token errors. Decode classifies failures distinctly; callers that gate
// requests collapse all of them into "unauthenticated".
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("signature mismatch")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingClaim   = errors.New("missing required claim")
)

// Claims is the decoded payload of a session credential.
type Claims struct {
	UserID    string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec defines the interface for issuing and decoding session credentials.
type TokenCodec interface {
	Issue(userID, name string, ttl time.Duration) (string, error)
	Decode(credential string) (*Claims, error)
}

// JWTCodec implements TokenCodec using HS256 signed JWTs. The same secret
// decodes what it issues; there is no key rotation.
type JWTCodec struct {
	secret []byte
}

// NewJWTCodec creates a new codec with the given secret.
// Returns an error if the secret is shorter than MinSecretLength.
func NewJWTCodec(secret []byte) (*JWTCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &JWTCodec{secret: secret}, nil
}

// Issue creates a new signed credential for the given user. The user's
// display name travels inside the credential so verification never needs a
// database round-trip.
func (c *JWTCodec) Issue(userID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode validates the credential's structure, signature, and expiry, and
// returns its claims. Failures are classified as ErrMalformedToken,
// ErrBadSignature, ErrExpiredToken, or ErrMissingClaim.
func (c *JWTCodec) Decode(credential string) (*Claims, error) {
	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, fmt.Errorf("%w: exp", ErrMissingClaim)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrMalformedToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	iat, err := mapClaims.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: iat", ErrMissingClaim)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp", ErrMissingClaim)
	}

	name, _ := mapClaims["name"].(string)

	return &Claims{
		UserID:    sub,
		Name:      name,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
