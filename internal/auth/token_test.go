// ABOUTME: Unit tests for session credential encoding and decoding
// ABOUTME: Covers round-trips, tampering, expiry, and failure classification

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret is a 32-byte secret that meets MinSecretLength.
var testSecret = []byte("credential-codec-test-secret-32!")

func TestNewJWTCodec_ShortSecret(t *testing.T) {
	_, err := NewJWTCodec([]byte("too-short"))
	if err == nil {
		t.Fatal("NewJWTCodec() should reject a short secret")
	}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec, err := NewJWTCodec(testSecret)
	if err != nil {
		t.Fatalf("NewJWTCodec() error = %v", err)
	}

	userID := "user-123"
	credential, err := codec.Issue(userID, "Ada", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := codec.Decode(credential)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Decode() UserID = %q, want %q", claims.UserID, userID)
	}
	if claims.Name != "Ada" {
		t.Errorf("Decode() Name = %q, want %q", claims.Name, "Ada")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Errorf("ExpiresAt %v should be after IssuedAt %v", claims.ExpiresAt, claims.IssuedAt)
	}
}

func TestJWTCodec_MalformedToken(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "wrong segment count", token: "header.payload"},
		{name: "bad base64", token: "a!.b!.c!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			if !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Decode() error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)
	otherCodec, _ := NewJWTCodec([]byte("a-different-32-byte-test-secret!"))

	credential, err := otherCodec.Issue("user-123", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Decode(credential)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("Decode() error = %v, want ErrBadSignature", err)
	}
}

func TestJWTCodec_ExpiredToken(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)

	// A credential that expired an hour ago
	credential, err := codec.Issue("user-123", "Ada", -time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Decode(credential)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Decode() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTCodec_MissingClaims(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)
	now := time.Now()

	sign := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(testSecret)
		if err != nil {
			t.Fatalf("signing test token: %v", err)
		}
		return signed
	}

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{
			name:   "missing sub",
			claims: jwt.MapClaims{"iat": now.Unix(), "exp": now.Add(time.Hour).Unix()},
		},
		{
			name:   "empty sub",
			claims: jwt.MapClaims{"sub": "", "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()},
		},
		{
			name:   "missing exp",
			claims: jwt.MapClaims{"sub": "user-123", "iat": now.Unix()},
		},
		{
			name:   "missing iat",
			claims: jwt.MapClaims{"sub": "user-123", "exp": now.Add(time.Hour).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(sign(tt.claims))
			if !errors.Is(err, ErrMissingClaim) {
				t.Errorf("Decode() error = %v, want ErrMissingClaim", err)
			}
		})
	}
}

func TestJWTCodec_TamperedPayload(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)

	credential, err := codec.Issue("user-123", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	// Alter single payload characters; every alteration must invalidate
	// the signature check.
	payload := parts[1]
	for i := 0; i < len(payload); i += 7 {
		altered := []byte(payload)
		if altered[i] == 'A' {
			altered[i] = 'B'
		} else {
			altered[i] = 'A'
		}
		if string(altered) == payload {
			continue
		}

		tampered := parts[0] + "." + string(altered) + "." + parts[2]
		if _, err := codec.Decode(tampered); err == nil {
			t.Errorf("Decode() accepted credential with payload byte %d altered", i)
		}
	}
}
