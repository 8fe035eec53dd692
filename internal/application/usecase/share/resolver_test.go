package share

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/mocks"
	"github.com/khoahotran/cuervo/pkg/logger"
)

func chosenProfile(owner uuid.UUID) *profile.Profile {
	id := uuid.New()
	return &profile.Profile{ID: &id, OwnerID: owner, Title: "Main", Chosen: true}
}

func TestResolve_NoChosenProfile(t *testing.T) {
	repo := new(mocks.ProfileRepository)
	owner := uuid.New()
	repo.On("FindChosenByOwner", mock.Anything, owner).Return(nil, profile.ErrProfileNotFound)

	res := NewPublicResolver(repo, nil, logger.NewNop()).Resolve(context.Background(), owner.String())

	assert.Equal(t, StateNotFound, res.State)
	assert.Nil(t, res.Profile)
	repo.AssertExpectations(t)
}

func TestResolve_StoreFailureLooksLikeNotFound(t *testing.T) {
	repo := new(mocks.ProfileRepository)
	owner := uuid.New()
	repo.On("FindChosenByOwner", mock.Anything, owner).Return(nil, errors.New("connection refused"))

	res := NewPublicResolver(repo, nil, logger.NewNop()).Resolve(context.Background(), owner.String())

	assert.Equal(t, StateNotFound, res.State)
}

func TestResolve_MalformedTokenSkipsStore(t *testing.T) {
	repo := new(mocks.ProfileRepository)

	res := NewPublicResolver(repo, nil, logger.NewNop()).Resolve(context.Background(), "../etc/passwd")

	assert.Equal(t, StateNotFound, res.State)
	repo.AssertNotCalled(t, "FindChosenByOwner", mock.Anything, mock.Anything)
}

func TestResolve_FoundIsCached(t *testing.T) {
	repo := new(mocks.ProfileRepository)
	cache := new(mocks.PublicProfileCache)
	owner := uuid.New()
	p := chosenProfile(owner)

	cache.On("Get", mock.Anything, owner).Return(nil, false, nil)
	repo.On("FindChosenByOwner", mock.Anything, owner).Return(p, nil)
	cache.On("Set", mock.Anything, owner, p).Return(nil)

	res := NewPublicResolver(repo, cache, logger.NewNop()).Resolve(context.Background(), owner.String())

	assert.Equal(t, StateFound, res.State)
	assert.Equal(t, p, res.Profile)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestResolve_CacheHit(t *testing.T) {
	repo := new(mocks.ProfileRepository)
	cache := new(mocks.PublicProfileCache)
	owner := uuid.New()
	p := chosenProfile(owner)
	cache.On("Get", mock.Anything, owner).Return(p, true, nil)

	res := NewPublicResolver(repo, cache, logger.NewNop()).Resolve(context.Background(), owner.String())

	assert.Equal(t, StateFound, res.State)
	repo.AssertNotCalled(t, "FindChosenByOwner", mock.Anything, mock.Anything)
}

func TestResolve_CacheErrorFallsBackToStore(t *testing.T) {
	repo := new(mocks.ProfileRepository)
	cache := new(mocks.PublicProfileCache)
	owner := uuid.New()
	p := chosenProfile(owner)
	cache.On("Get", mock.Anything, owner).Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, owner, p).Return(errors.New("redis down"))
	repo.On("FindChosenByOwner", mock.Anything, owner).Return(p, nil)

	res := NewPublicResolver(repo, cache, logger.NewNop()).Resolve(context.Background(), owner.String())

	assert.Equal(t, StateFound, res.State)
	assert.Equal(t, p, res.Profile)
}
