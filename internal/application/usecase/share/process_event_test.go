package share

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/mocks"
	"github.com/khoahotran/cuervo/pkg/logger"
)

type eventFixture struct {
	repo     *mocks.ProfileRepository
	cache    *mocks.PublicProfileCache
	uploader *mocks.Uploader
	uc       *ProcessProfileEventUseCase
}

func newEventFixture(t *testing.T) eventFixture {
	t.Helper()
	qr, err := NewQRGenerator("https://cuervo.test", "https://qr.test/create/", 200)
	require.NoError(t, err)

	f := eventFixture{
		repo:     new(mocks.ProfileRepository),
		cache:    new(mocks.PublicProfileCache),
		uploader: new(mocks.Uploader),
	}
	f.uc = NewProcessProfileEventUseCase(f.repo, f.cache, qr, f.uploader, logger.NewNop())
	return f
}

func TestProcessEvent_UpdateOnlyInvalidates(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	f.cache.On("Invalidate", mock.Anything, owner).Return(nil)

	err := f.uc.Execute(context.Background(), profile.Event{EventType: profile.EventUpdated, OwnerID: owner, ProfileID: uuid.New()})

	require.NoError(t, err)
	f.cache.AssertExpectations(t)
	f.uploader.AssertNotCalled(t, "UploadFromURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_ChosenArchivesQR(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	chosen := chosenProfile(owner)
	f.cache.On("Invalidate", mock.Anything, owner).Return(nil)
	f.repo.On("FindChosenByOwner", mock.Anything, owner).Return(chosen, nil)
	f.uploader.On("UploadFromURL", mock.Anything,
		mock.MatchedBy(func(src string) bool { return strings.HasPrefix(src, "https://qr.test/create/?") }),
		"qr", owner.String(),
	).Return("https://res.cloudinary.test/qr/"+owner.String()+".png", nil)

	err := f.uc.Execute(context.Background(), profile.Event{EventType: profile.EventChosen, OwnerID: owner, ProfileID: *chosen.ID})

	require.NoError(t, err)
	f.uploader.AssertExpectations(t)
}

func TestProcessEvent_StaleChosenIsSkipped(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	f.cache.On("Invalidate", mock.Anything, owner).Return(nil)
	f.repo.On("FindChosenByOwner", mock.Anything, owner).Return(chosenProfile(owner), nil)

	err := f.uc.Execute(context.Background(), profile.Event{EventType: profile.EventChosen, OwnerID: owner, ProfileID: uuid.New()})

	require.NoError(t, err)
	f.uploader.AssertNotCalled(t, "UploadFromURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_CacheFailureIsReported(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	f.cache.On("Invalidate", mock.Anything, owner).Return(errors.New("redis down"))

	err := f.uc.Execute(context.Background(), profile.Event{EventType: profile.EventDeleted, OwnerID: owner, ProfileID: uuid.New()})

	assert.Error(t, err)
}

func TestProcessEvent_RetryUntilSuccess(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	f.cache.On("Invalidate", mock.Anything, owner).Return(errors.New("redis down")).Twice()
	f.cache.On("Invalidate", mock.Anything, owner).Return(nil).Once()

	err := f.uc.ExecuteWithRetry(context.Background(),
		profile.Event{EventType: profile.EventDeleted, OwnerID: owner, ProfileID: uuid.New()},
		time.Millisecond, 2*time.Millisecond,
	)

	require.NoError(t, err)
	f.cache.AssertNumberOfCalls(t, "Invalidate", 3)
}

func TestProcessEvent_RetryStopsWithContext(t *testing.T) {
	f := newEventFixture(t)
	owner := uuid.New()
	f.cache.On("Invalidate", mock.Anything, owner).Return(errors.New("redis down"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := f.uc.ExecuteWithRetry(ctx,
		profile.Event{EventType: profile.EventUpdated, OwnerID: owner, ProfileID: uuid.New()},
		time.Millisecond, 5*time.Millisecond,
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	f.uploader.AssertNotCalled(t, "UploadFromURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
