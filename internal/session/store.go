package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value for the account.
var ErrNotFound = errors.New("session key not found")

// Store is the per-account key-value state a checkout session reads and
// writes: selected voucher, address, payment method. It replaces the
// device-local ambient storage of the mobile client with an injected
// adapter, so the orchestrator never touches a global.
type Store interface {
	Get(ctx context.Context, accountID, key string) (string, error)
	Set(ctx context.Context, accountID, key, value string) error
	Remove(ctx context.Context, accountID, key string) error
}
