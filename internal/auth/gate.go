// ABOUTME: Edge gate middleware deciding allow/redirect per request from path class and credential validity
// ABOUTME: Coarse path-based check only; resource-level authorization happens in handlers

package auth

import (
	"net/http"
	"strings"
)

// GateConfig controls the edge gate's path classification and redirect targets.
type GateConfig struct {
	// PublicPaths are path prefixes reachable without a credential.
	// Everything else is protected by default (fail-closed).
	PublicPaths []string

	// SkipPrefixes are paths the gate passes through untouched. API and
	// static asset routes enforce their own auth and must not be answered
	// with login redirects.
	SkipPrefixes []string

	// LoginPath is where unauthenticated requests for protected paths land.
	LoginPath string

	// LandingPath is where authenticated requests for public pages land.
	LandingPath string
}

// DefaultGateConfig returns the gate configuration used by the server.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		PublicPaths:  []string{"/login", "/register"},
		SkipPrefixes: []string{"/api/", "/static/", "/healthz"},
		LoginPath:    "/login",
		LandingPath:  "/dashboard",
	}
}

// isPublic reports whether the path requires no credential. The root path is
// public but is never a redirect target for authenticated users.
func (c GateConfig) isPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range c.PublicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (c GateConfig) isSkipped(path string) bool {
	for _, p := range c.SkipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// EdgeGate returns a middleware that runs once per inbound request, before
// any handler logic, deciding allow or redirect purely from the presence and
// validity of the session credential and the path's sensitivity class:
//
//	credential  valid  path class          outcome
//	absent      -      public              proceed
//	absent      -      protected           redirect to login
//	present     yes    public (non-root)   redirect to landing page
//	present     yes    protected           proceed
//	present     no     protected           clear credential, redirect to login
//	present     no     public              proceed (credential ignored)
//
// The gate never makes resource-level decisions; handlers re-derive the
// principal and check ownership themselves.
func EdgeGate(verifier *Verifier, cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if cfg.isSkipped(path) {
				next.ServeHTTP(w, r)
				return
			}

			public := cfg.isPublic(path)
			credential := CredentialFromRequest(r)

			if credential == "" {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
				return
			}

			principal := verifier.Verify(credential)
			if principal != nil {
				if public && path != "/" {
					http.Redirect(w, r, cfg.LandingPath, http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Invalid or expired credential
			if public {
				next.ServeHTTP(w, r)
				return
			}
			ClearSessionCookie(w)
			http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
		})
	}
}
