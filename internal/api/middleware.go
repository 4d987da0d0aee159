package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neexbeast/clima-rs/internal/apperr"
)

// AdminCredentials configures admin authentication. When JWTSecret is set,
// callers must present an HS256 token signed with it; otherwise Token is
// compared as a static bearer value.
type AdminCredentials struct {
	JWTSecret string
	Token     string
}

// AdminAuth returns middleware guarding the admin routes. With no
// credential configured every request is refused as ConfigurationMissing.
func AdminAuth(creds AdminCredentials, h *Handlers) func(http.Handler) http.Handler {
	verify := func(string) bool { return false }
	switch {
	case creds.JWTSecret != "":
		verify = jwtVerifier([]byte(creds.JWTSecret))
	case creds.Token != "":
		verify = func(provided string) bool {
			return subtle.ConstantTimeCompare([]byte(provided), []byte(creds.Token)) == 1
		}
	}
	configured := creds.JWTSecret != "" || creds.Token != ""

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !configured {
				h.writeError(w, r, apperr.ConfigurationMissing("admin auth", "ADMIN_JWT_SECRET or ADMIN_TOKEN"))
				return
			}

			auth := r.Header.Get("Authorization")
			provided, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || provided == "" || !verify(provided) {
				h.log.Warn("admin auth rejected", "path", r.URL.Path)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func jwtVerifier(secret []byte) func(string) bool {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	return func(raw string) bool {
		token, err := parser.Parse(raw, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		return err == nil && token.Valid
	}
}
