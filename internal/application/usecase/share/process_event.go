package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/internal/application/service"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/pkg/logger"
)

const (
	qrFolder            = "qr"
	defaultRetryBackoff = time.Second
)

// ProcessProfileEventUseCase keeps the public side in step with profile
// writes: it drops the cached public view and, when the chosen profile moved,
// archives the owner's share QR image.
type ProcessProfileEventUseCase struct {
	profileRepo profile.Repository
	cache       service.PublicProfileCache
	qr          *QRGenerator
	uploader    service.Uploader
	logger      logger.Logger
}

func NewProcessProfileEventUseCase(
	repo profile.Repository,
	cache service.PublicProfileCache,
	qr *QRGenerator,
	up service.Uploader,
	log logger.Logger,
) *ProcessProfileEventUseCase {
	return &ProcessProfileEventUseCase{
		profileRepo: repo,
		cache:       cache,
		qr:          qr,
		uploader:    up,
		logger:      log,
	}
}

// Execute returns an error only when the event should be retried.
func (uc *ProcessProfileEventUseCase) Execute(ctx context.Context, e profile.Event) error {
	ctx, span := tracer.Start(ctx, "ProcessProfileEvent")
	defer span.End()

	log := uc.logger.With(
		zap.String("event_type", string(e.EventType)),
		zap.String("owner_id", e.OwnerID.String()),
		zap.String("profile_id", e.ProfileID.String()),
	)

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, e.OwnerID); err != nil {
			span.RecordError(err)
			return fmt.Errorf("invalidate public profile failed: %w", err)
		}
	}

	if e.EventType != profile.EventChosen || uc.uploader == nil {
		log.Debug("Public profile cache invalidated")
		return nil
	}

	chosen, err := uc.profileRepo.FindChosenByOwner(ctx, e.OwnerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("Owner has no chosen profile anymore, skip QR archive")
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("get chosen profile failed: %w", err)
	}
	if chosen.ID == nil || *chosen.ID != e.ProfileID {
		log.Info("Chosen profile changed again since the event, skip QR archive")
		return nil
	}

	link, err := uc.qr.Generate(e.OwnerID)
	if err != nil {
		return fmt.Errorf("build QR link failed: %w", err)
	}

	archived, err := uc.uploader.UploadFromURL(ctx, link.ImageURL, qrFolder, e.OwnerID.String())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("archive QR image failed: %w", err)
	}

	log.Info("Archived share QR image", zap.String("url", archived))
	return nil
}

// ExecuteWithRetry runs Execute until it succeeds or ctx ends, doubling the
// wait between attempts up to maxBackoff. It returns ctx's error when the
// event was never processed.
func (uc *ProcessProfileEventUseCase) ExecuteWithRetry(ctx context.Context, e profile.Event, backoff, maxBackoff time.Duration) error {
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	for attempt := 1; ; attempt++ {
		err := uc.Execute(ctx, e)
		if err == nil {
			return nil
		}
		uc.logger.Warn("Profile event failed, retrying",
			zap.String("event_type", string(e.EventType)),
			zap.String("owner_id", e.OwnerID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
