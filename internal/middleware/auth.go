package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/barakabank/bank-service/internal/config"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// Claims are the JWT claims issued at login and parsed back into an Identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64       `json:"uid"`
	AccountID int64       `json:"account_id"`
	Role      models.Role `json:"role"`
}

// IdentityFromContext extracts the authenticated identity stored by
// AuthMiddleware. The second return is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// AuthMiddleware validates the Bearer token and stores the resolved identity
// in the request context. The engine itself never reads ambient state; the
// handlers pass the identity on explicitly.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			identity := models.Identity{
				UserID:    claims.UserID,
				AccountID: claims.AccountID,
				Roles:     []models.Role{claims.Role},
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose identity lacks the given role.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !identity.HasRole(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
