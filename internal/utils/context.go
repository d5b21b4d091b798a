package utils

import "context"

type contextKey string

const (
	AccountIDKey   contextKey = "account_id"
	TokenClaimsKey contextKey = "jwt_claims"
)

// SetAccountContext sets the authenticated account into context (called by middleware).
func SetAccountContext(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, AccountIDKey, accountID)
}

// GetAccountIDFromContext retrieves the account ID safely.
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDKey).(string)
	return id, ok && id != ""
}
