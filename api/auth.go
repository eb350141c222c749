/*
auth.go - JWT issuance and request authentication

PURPOSE:

	Bearer-token authentication for the API. Tokens are HS256 JWTs minted
	by the deployment's identity provider with the shared secret; the
	middleware resolves them back to a Principal on every request. Issue
	exists for provisioning tooling and tests, the server itself never
	hands out tokens.

TOKEN CONTENTS:

	Subject is the account id. Staff and superuser flags ride in the
	claims, but the middleware re-reads the stored account on every
	request: a deactivated or deleted account loses access immediately,
	and role flags always reflect the current record rather than the
	record at signing time.

SEE ALSO:
  - accounts/service.go: The authorization rules behind the routes
  - handlers.go: Handlers reading the Principal from context
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/warp/workforce/accounts"
)

// =============================================================================
// TOKEN ISSUER
// =============================================================================

// TokenIssuer signs and verifies the API's bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer. A zero ttl defaults to 24 hours.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

type tokenClaims struct {
	Username  string `json:"username"`
	Staff     bool   `json:"staff"`
	Superuser bool   `json:"superuser"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for an account.
func (t *TokenIssuer) Issue(a *accounts.Account) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Username:  a.Username,
		Staff:     a.Staff,
		Superuser: a.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses a token string back into a Principal. The result only
// proves who signed in; Authenticate still checks the stored account
// before trusting it.
func (t *TokenIssuer) Verify(tokenString string) (accounts.Principal, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return accounts.Anonymous, fmt.Errorf("invalid token: %w", err)
	}
	return accounts.Principal{
		ID:        claims.Subject,
		Staff:     claims.Staff,
		Superuser: claims.Superuser,
	}, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type contextKey string

const principalKey contextKey = "principal"

// principalFrom returns the request's Principal, or Anonymous.
func principalFrom(ctx context.Context) accounts.Principal {
	if p, ok := ctx.Value(principalKey).(accounts.Principal); ok {
		return p
	}
	return accounts.Anonymous
}

// Authenticate resolves a Bearer token into a Principal when present.
// Requests without a token pass through as Anonymous; per-route guards
// decide whether that is acceptable.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Malformed Authorization header", nil)
			return
		}
		principal, err := h.Tokens.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		// The stored account, not the token, decides whether the holder
		// may still act: deactivation and role changes take effect on
		// the next request, not at token expiry.
		account, err := h.Store.FindAccount(r.Context(), principal.ID)
		if err != nil || !account.Active {
			writeError(w, http.StatusUnauthorized, "Account disabled or removed", nil)
			return
		}
		principal = accounts.PrincipalFor(account)

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principalFrom(r.Context()).IsAnonymous() {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects requests from non-staff principals.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		if p.IsAnonymous() {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if !p.Staff {
			writeError(w, http.StatusForbidden, "Staff access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
