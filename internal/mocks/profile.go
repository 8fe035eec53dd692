// Package mocks holds testify mocks for the domain and service ports.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/cuervo/internal/domain/profile"
)

type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]profile.Profile, error) {
	args := m.Called(ctx, ownerID)
	var out []profile.Profile
	if v := args.Get(0); v != nil {
		out = v.([]profile.Profile)
	}
	return out, args.Error(1)
}

func (m *ProfileRepository) Insert(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProfileRepository) ChooseActive(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *ProfileRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *ProfileRepository) FindChosenByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, ownerID)
	var out *profile.Profile
	if v := args.Get(0); v != nil {
		out = v.(*profile.Profile)
	}
	return out, args.Error(1)
}
