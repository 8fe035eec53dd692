package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/internal/application/service"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/domain/session"
	"github.com/khoahotran/cuervo/pkg/apperror"
	"github.com/khoahotran/cuervo/pkg/logger"
)

const eventPublishTimeout = 5 * time.Second

var tracer = otel.Tracer("profile_usecase")

// ProfileUseCase sequences workspace transitions with remote persistence.
// Local state only moves forward after the remote store confirmed a write;
// a failed call leaves the workspace at its last confirmed state.
type ProfileUseCase struct {
	profileRepo profile.Repository
	workspaces  *Workspaces
	guard       service.UpdateGuard
	cache       service.PublicProfileCache
	events      service.ProfileEventPublisher
	logger      logger.Logger
}

type Option func(*ProfileUseCase)

func WithUpdateGuard(g service.UpdateGuard) Option {
	return func(uc *ProfileUseCase) { uc.guard = g }
}

func WithPublicCache(c service.PublicProfileCache) Option {
	return func(uc *ProfileUseCase) { uc.cache = c }
}

func WithEventPublisher(p service.ProfileEventPublisher) Option {
	return func(uc *ProfileUseCase) { uc.events = p }
}

func NewProfileUseCase(repo profile.Repository, workspaces *Workspaces, log logger.Logger, opts ...Option) *ProfileUseCase {
	uc := &ProfileUseCase{
		profileRepo: repo,
		workspaces:  workspaces,
		logger:      log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type CollectionOutput struct {
	Profiles profile.Collection
	// IntegrityWarning is set when the remote store returned more than one
	// chosen profile. The collection is shown as stored, not repaired.
	IntegrityWarning bool
}

type EditInput struct {
	Title       *string
	Description *string
	Data        *profile.DataPatch
}

func (uc *ProfileUseCase) output(profiles profile.Collection) *CollectionOutput {
	return &CollectionOutput{Profiles: profiles, IntegrityWarning: profiles.ChosenCount() > 1}
}

// Load replaces the session workspace with the owner's stored profiles.
func (uc *ProfileUseCase) Load(ctx context.Context, sess session.Session) (*CollectionOutput, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	stored, err := uc.profileRepo.ListByOwner(ctx, sess.OwnerID)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to load profiles", err, zap.String("owner_id", sess.OwnerID.String()))
		return nil, remoteFailure(profile.ErrReloadFailed, err)
	}

	profiles := uc.workspaces.For(sess.OwnerID).Dispatch(profile.SetAll{Profiles: stored})
	out := uc.output(profiles)
	if out.IntegrityWarning {
		uc.logger.Warn("Owner has more than one chosen profile",
			zap.String("owner_id", sess.OwnerID.String()),
			zap.Int("chosen", profiles.ChosenCount()),
		)
	}
	span.SetAttributes(attribute.Int("profiles", len(profiles)))
	return out, nil
}

func (uc *ProfileUseCase) Current(sess session.Session) *CollectionOutput {
	return uc.output(uc.workspaces.For(sess.OwnerID).Snapshot())
}

// AddDraft collapses every profile and appends an empty expanded draft.
func (uc *ProfileUseCase) AddDraft(sess session.Session) *CollectionOutput {
	profiles := uc.workspaces.For(sess.OwnerID).Dispatch(
		profile.CollapseAll{},
		profile.Insert{Profile: profile.NewDraft(sess.OwnerID)},
	)
	return uc.output(profiles)
}

// Edit changes the local copy only; Save persists it.
func (uc *ProfileUseCase) Edit(sess session.Session, loc profile.Locator, in EditInput) (*CollectionOutput, error) {
	var cmds []profile.Command
	if in.Title != nil {
		cmds = append(cmds, profile.UpdateMeta{Target: loc, Field: profile.FieldTitle, Value: *in.Title})
	}
	if in.Description != nil {
		cmds = append(cmds, profile.UpdateMeta{Target: loc, Field: profile.FieldDescription, Value: *in.Description})
	}
	if in.Data != nil {
		cmds = append(cmds, profile.UpdateData{Target: loc, Patch: *in.Data})
	}

	profiles, _, err := uc.workspaces.For(sess.OwnerID).DispatchIf(loc, func(profile.Collection, profile.Profile) ([]profile.Command, error) {
		return cmds, nil
	})
	if err != nil {
		return nil, localFailure(loc, err)
	}
	return uc.output(profiles), nil
}

func (uc *ProfileUseCase) Toggle(sess session.Session, loc profile.Locator) (*CollectionOutput, error) {
	profiles, _, err := uc.workspaces.For(sess.OwnerID).DispatchIf(loc, func(profile.Collection, profile.Profile) ([]profile.Command, error) {
		return []profile.Command{profile.ToggleExpanded{Target: loc}}, nil
	})
	if err != nil {
		return nil, localFailure(loc, err)
	}
	return uc.output(profiles), nil
}

// Save creates a draft or updates a persisted profile, whichever loc points at.
func (uc *ProfileUseCase) Save(ctx context.Context, sess session.Session, loc profile.Locator) (*CollectionOutput, error) {
	_, p, ok := uc.workspaces.For(sess.OwnerID).Snapshot().Find(loc)
	if !ok {
		return nil, apperror.NewNotFound("profile", loc.String())
	}
	if p.IsDraft() {
		return uc.Create(ctx, sess, loc, p)
	}
	return uc.Update(ctx, sess, p)
}

// Create inserts the draft p found at loc and reloads the whole collection so
// the server-assigned id and defaults replace it. When only the reload fails
// the stored record takes the draft's place, so a retried save updates it
// instead of inserting it twice.
func (uc *ProfileUseCase) Create(ctx context.Context, sess session.Session, loc profile.Locator, p profile.Profile) (*CollectionOutput, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	record := p
	record.ID = nil
	record.OwnerID = sess.OwnerID
	if err := uc.profileRepo.Insert(ctx, &record); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to create profile", err, zap.String("owner_id", sess.OwnerID.String()))
		return nil, remoteFailure(profile.ErrCreateFailed, err)
	}

	if record.ID != nil {
		span.SetAttributes(attribute.String("profile_id", record.ID.String()))
		uc.publish(profile.Event{EventType: profile.EventCreated, OwnerID: sess.OwnerID, ProfileID: *record.ID})
	}
	if record.Chosen {
		uc.invalidate(ctx, sess.OwnerID)
	}

	out, err := uc.Load(ctx, sess)
	if err == nil {
		return out, nil
	}
	if record.ID == nil {
		return nil, err
	}
	uc.logger.Warn("Profile created but reload failed, keeping stored record",
		zap.String("profile_id", record.ID.String()),
		zap.Error(err),
	)
	return uc.output(uc.workspaces.For(sess.OwnerID).Dispatch(profile.Replace{Target: loc, Profile: record})), nil
}

// Update persists p. The workspace already holds the edit, so nothing local
// changes on success or on failure.
func (uc *ProfileUseCase) Update(ctx context.Context, sess session.Session, p profile.Profile) (*CollectionOutput, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()

	if p.ID == nil {
		return nil, apperror.NewRuleViolation(profile.ErrDraftNotPersisted)
	}
	id := *p.ID
	span.SetAttributes(attribute.String("profile_id", id.String()))

	if uc.guard != nil {
		acquired, err := uc.guard.Acquire(ctx, id)
		if err != nil {
			uc.logger.Warn("Update guard unavailable, continuing without it", zap.String("profile_id", id.String()), zap.Error(err))
		} else if !acquired {
			return nil, apperror.NewAppError(apperror.ErrConflict, profile.ErrUpdateInFlight.Error(), id.String(), profile.ErrUpdateInFlight)
		} else {
			defer func() {
				if err := uc.guard.Release(context.WithoutCancel(ctx), id); err != nil {
					uc.logger.Warn("Failed to release update guard", zap.String("profile_id", id.String()), zap.Error(err))
				}
			}()
		}
	}

	record := p
	record.OwnerID = sess.OwnerID
	if err := uc.profileRepo.Update(ctx, &record); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to update profile", err, zap.String("profile_id", id.String()))
		return nil, remoteFailure(profile.ErrUpdateFailed, err)
	}

	if record.Chosen {
		uc.invalidate(ctx, sess.OwnerID)
	}
	uc.publish(profile.Event{EventType: profile.EventUpdated, OwnerID: sess.OwnerID, ProfileID: id})

	return uc.Current(sess), nil
}

// Choose makes loc the owner's active profile. The flag is applied locally
// only after the remote store accepted it.
func (uc *ProfileUseCase) Choose(ctx context.Context, sess session.Session, loc profile.Locator) (*CollectionOutput, error) {
	ctx, span := tracer.Start(ctx, "Choose")
	defer span.End()

	w := uc.workspaces.For(sess.OwnerID)
	_, p, ok := w.Snapshot().Find(loc)
	if !ok {
		return nil, apperror.NewNotFound("profile", loc.String())
	}
	if p.IsDraft() {
		return nil, apperror.NewRuleViolation(profile.ErrDraftNotPersisted)
	}
	id := *p.ID
	span.SetAttributes(attribute.String("profile_id", id.String()))

	if err := uc.profileRepo.ChooseActive(ctx, id, sess.OwnerID); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to choose profile", err, zap.String("profile_id", id.String()))
		return nil, remoteFailure(profile.ErrChooseFailed, err)
	}

	profiles := w.Dispatch(profile.Choose{Target: profile.ByID(id)})
	uc.invalidate(ctx, sess.OwnerID)
	uc.publish(profile.Event{EventType: profile.EventChosen, OwnerID: sess.OwnerID, ProfileID: id})

	return uc.output(profiles), nil
}

// Delete removes loc. Drafts only live in the workspace and are dropped
// without a remote call. The chosen profile and the last remaining profile
// are never deleted.
func (uc *ProfileUseCase) Delete(ctx context.Context, sess session.Session, loc profile.Locator) (*CollectionOutput, error) {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()

	w := uc.workspaces.For(sess.OwnerID)
	profiles, p, err := w.DispatchIf(loc, func(current profile.Collection, p profile.Profile) ([]profile.Command, error) {
		switch {
		case len(current) == 1:
			return nil, profile.ErrLastProfileDelete
		case p.IsDraft():
			return []profile.Command{profile.Remove{Target: loc}}, nil
		case p.Chosen:
			return nil, profile.ErrActiveProfileDelete
		}
		return nil, nil
	})
	if err != nil {
		return nil, localFailure(loc, err)
	}
	if p.IsDraft() {
		return uc.output(profiles), nil
	}
	id := *p.ID
	span.SetAttributes(attribute.String("profile_id", id.String()))

	if err := uc.profileRepo.Delete(ctx, id, sess.OwnerID); err != nil {
		span.RecordError(err)
		if errors.Is(err, profile.ErrActiveProfileDelete) {
			uc.logger.Warn("Profile became chosen before delete, refused", zap.String("profile_id", id.String()))
			return nil, apperror.NewRuleViolation(profile.ErrActiveProfileDelete)
		}
		uc.logger.Error("Failed to delete profile", err, zap.String("profile_id", id.String()))
		return nil, remoteFailure(profile.ErrDeleteFailed, err)
	}

	profiles = w.Dispatch(profile.Remove{Target: profile.ByID(id)})
	uc.publish(profile.Event{EventType: profile.EventDeleted, OwnerID: sess.OwnerID, ProfileID: id})

	return uc.output(profiles), nil
}

// End drops the owner's workspace when the session ends.
func (uc *ProfileUseCase) End(sess session.Session) {
	uc.workspaces.End(sess.OwnerID)
}

func (uc *ProfileUseCase) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, ownerID); err != nil {
		uc.logger.Warn("Failed to invalidate public profile cache", zap.String("owner_id", ownerID.String()), zap.Error(err))
	}
}

func (uc *ProfileUseCase) publish(e profile.Event) {
	if uc.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := uc.events.PublishProfileEvent(ctx, e); err != nil {
			uc.logger.Error("Failed to publish profile event", err,
				zap.String("event_type", string(e.EventType)),
				zap.String("profile_id", e.ProfileID.String()),
			)
		}
	}()
}

func localFailure(loc profile.Locator, err error) error {
	if errors.Is(err, profile.ErrProfileNotFound) {
		return apperror.NewNotFound("profile", loc.String())
	}
	return apperror.NewRuleViolation(err)
}

func remoteFailure(op error, err error) error {
	if errors.Is(err, profile.ErrProfileNotFound) {
		return apperror.NewAppError(apperror.ErrNotFound, op.Error(), "profile no longer exists", errors.Join(op, err))
	}
	return apperror.NewOperationFailed(op, err)
}
