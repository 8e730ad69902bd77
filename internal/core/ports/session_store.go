package ports

import (
	"context"
	"time"
)

// SessionRevoker records logged-out token ids until they would have expired anyway.
type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
