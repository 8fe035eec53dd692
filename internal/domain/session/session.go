package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated context every profile operation is scoped by.
type Session struct {
	OwnerID   uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// Revocations remembers signed-out tokens until they would have expired.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
