package share

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/internal/application/service"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/pkg/logger"
)

type State string

const (
	StateLoading  State = "loading"
	StateFound    State = "found"
	StateNotFound State = "not_found"
)

type Resolution struct {
	State   State
	Profile *profile.Profile
}

var tracer = otel.Tracer("share_usecase")

// PublicResolver looks up the chosen profile behind an owner token. It is
// read-only and never reports why a lookup failed: an unknown owner, an owner
// without a chosen profile and a store failure all resolve to not found.
type PublicResolver struct {
	repo   profile.Repository
	cache  service.PublicProfileCache
	logger logger.Logger
}

// NewPublicResolver accepts a nil cache.
func NewPublicResolver(repo profile.Repository, cache service.PublicProfileCache, log logger.Logger) *PublicResolver {
	return &PublicResolver{repo: repo, cache: cache, logger: log}
}

func (r *PublicResolver) Resolve(ctx context.Context, token string) Resolution {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	ownerID, err := uuid.Parse(token)
	if err != nil || ownerID == uuid.Nil {
		span.SetAttributes(attribute.String("state", string(StateNotFound)))
		return Resolution{State: StateNotFound}
	}

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, ownerID)
		if err != nil {
			r.logger.Warn("Public profile cache read failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		} else if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return Resolution{State: StateFound, Profile: cached}
		}
	}

	p, err := r.repo.FindChosenByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			span.RecordError(err)
			r.logger.Error("Public profile lookup failed", err, zap.String("owner_id", ownerID.String()))
		}
		return Resolution{State: StateNotFound}
	}
	if p == nil || !p.Chosen {
		return Resolution{State: StateNotFound}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, ownerID, p); err != nil {
			r.logger.Warn("Public profile cache write failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		}
	}
	span.SetAttributes(attribute.String("state", string(StateFound)))
	return Resolution{State: StateFound, Profile: p}
}
