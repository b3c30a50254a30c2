// Package auth provides authentication for taskdeck.
//
// # Session Credentials
//
// Users authenticate with a self-contained JWT signed with HS256 using the
// configured jwt_secret. All state needed to verify a credential travels
// inside it: user ID, display name, issued-at, and expiry. There is no
// server-side session store, which also means a credential cannot be revoked
// before its natural expiry.
//
// # Credential Lifecycle
//
//	credential, err := codec.Issue(userID, name, ttl)   // at login
//	claims, err := codec.Decode(credential)             // classified failures
//	principal := verifier.Verify(credential)            // nil on any failure
//
// Decode distinguishes malformed structure, signature mismatch, missing
// claims, and expiry. Verify deliberately flattens all of those to nil so
// that nothing downstream can branch on why a credential failed.
//
// # Edge Gate
//
// EdgeGate is an ordinary net/http middleware evaluated once per request. It
// classifies the path as public or protected (fail-closed) and decides
// allow/redirect from credential validity alone. It is coarse by design:
// per-resource authorization lives in the guard package and runs inside
// handlers.
//
// # Transport
//
// The credential travels in an HttpOnly cookie scoped to the whole site,
// set at login and cleared at logout or when the gate sees an invalid
// credential on a protected path.
package auth
