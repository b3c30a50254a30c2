// ABOUTME: Session cookie transport for the credential
// ABOUTME: HttpOnly, site-wide cookie set at login and cleared at logout or on failure

package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the name of the cookie carrying the session credential.
const SessionCookieName = "taskdeck_session"

// CredentialFromRequest extracts the raw credential from the session cookie.
// Returns "" if the cookie is absent.
func CredentialFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie attaches the credential to the response as an HttpOnly
// cookie scoped to the whole site.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, credential string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    credential,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie from the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
