// ABOUTME: Session verification turning a raw credential into a Principal
// ABOUTME: All decode and expiry failures collapse to nil for callers

package auth

import (
	"log/slog"
)

// Principal is the authenticated identity derived from a valid credential.
// It is reconstructed purely from the credential payload; verification never
// re-queries storage, so a still-unexpired credential for a deleted user is
// accepted. That is a documented limitation of the stateless scheme.
type Principal struct {
	ID   string
	Name string
}

// Verifier validates presented credentials.
type Verifier struct {
	codec  TokenCodec
	logger *slog.Logger
}

// NewVerifier creates a Verifier on top of the given codec.
func NewVerifier(codec TokenCodec) *Verifier {
	return &Verifier{
		codec:  codec,
		logger: slog.Default().With("component", "auth"),
	}
}

// Verify returns the Principal carried by the credential, or nil if the
// credential is malformed, tampered with, missing claims, or expired.
// Callers must treat nil uniformly as unauthenticated; the failure detail is
// logged at debug level only and never influences authorization decisions.
func (v *Verifier) Verify(credential string) *Principal {
	if credential == "" {
		return nil
	}

	claims, err := v.codec.Decode(credential)
	if err != nil {
		v.logger.Debug("credential rejected", "error", err)
		return nil
	}

	return &Principal{
		ID:   claims.UserID,
		Name: claims.Name,
	}
}
