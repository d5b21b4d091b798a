package middleware

import (
	"context"
	"net/http"
	"strings"

	"cakeshop-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware extracts the account ID from a Bearer token signed with the
// given secret. Requests without a valid token continue anonymously; handlers
// that need an account check the context themselves.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			})

			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				ctx := context.WithValue(r.Context(), utils.TokenClaimsKey, claims)
				if id, ok := claims["account_id"].(string); ok && id != "" {
					ctx = utils.SetAccountContext(ctx, id)
				} else if sub, ok := claims["sub"].(string); ok && sub != "" {
					ctx = utils.SetAccountContext(ctx, sub)
				}
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}
