package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"bloodlagbe_backend/internal/httputil"
	"bloodlagbe_backend/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"

	// sessionCookieName is the identity provider's session cookie
	sessionCookieName = "__session"
)

// SessionAuth validates the identity provider's session token and stores the
// authenticated principal in the request context. It checks the
// Authorization header first, then falls back to the session cookie. Every
// failure writes a 401 and stops the chain; the handler body never runs for
// an unauthenticated request.
func SessionAuth(jwtKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			if tokenString == "" {
				cookie, err := r.Cookie(sessionCookieName)
				if err == nil && cookie.Value != "" {
					tokenString = cookie.Value
				}
			}

			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing session token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtKey), nil
			})
			if err != nil || !token.Valid {
				httputil.WriteUnauthorized(w, "Invalid session token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				httputil.WriteUnauthorized(w, "Invalid session token")
				return
			}

			principal := model.Principal{
				ClerkID:   stringClaim(claims, "sub"),
				Email:     stringClaim(claims, "email"),
				FirstName: stringClaim(claims, "first_name"),
				LastName:  stringClaim(claims, "last_name"),
			}
			if principal.ClerkID == "" || principal.Email == "" {
				httputil.WriteUnauthorized(w, "Invalid session claims")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(model.Principal)
	return principal, ok
}
