package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/cuervo/internal/domain/profile"
)

// PublicProfileCache holds the resolved chosen profile per owner token.
type PublicProfileCache interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error)
	Set(ctx context.Context, ownerID uuid.UUID, p *profile.Profile) error
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}

// UpdateGuard keeps at most one remote update in flight per profile id.
type UpdateGuard interface {
	Acquire(ctx context.Context, profileID uuid.UUID) (bool, error)
	Release(ctx context.Context, profileID uuid.UUID) error
}
