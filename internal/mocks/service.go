package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/domain/user"
)

type PublicProfileCache struct {
	mock.Mock
}

func (m *PublicProfileCache) Get(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error) {
	args := m.Called(ctx, ownerID)
	var out *profile.Profile
	if v := args.Get(0); v != nil {
		out = v.(*profile.Profile)
	}
	return out, args.Bool(1), args.Error(2)
}

func (m *PublicProfileCache) Set(ctx context.Context, ownerID uuid.UUID, p *profile.Profile) error {
	return m.Called(ctx, ownerID, p).Error(0)
}

func (m *PublicProfileCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	return m.Called(ctx, ownerID).Error(0)
}

type UpdateGuard struct {
	mock.Mock
}

func (m *UpdateGuard) Acquire(ctx context.Context, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *UpdateGuard) Release(ctx context.Context, profileID uuid.UUID) error {
	return m.Called(ctx, profileID).Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishProfileEvent(ctx context.Context, e profile.Event) error {
	return m.Called(ctx, e).Error(0)
}

type Uploader struct {
	mock.Mock
}

func (m *Uploader) UploadFromURL(ctx context.Context, sourceURL string, folder string, publicID string) (string, error) {
	args := m.Called(ctx, sourceURL, folder, publicID)
	return args.String(0), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	var out *user.User
	if v := args.Get(0); v != nil {
		out = v.(*user.User)
	}
	return out, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	var out *user.User
	if v := args.Get(0); v != nil {
		out = v.(*user.User)
	}
	return out, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

type Revocations struct {
	mock.Mock
}

func (m *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

func (m *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
