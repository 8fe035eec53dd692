package profile

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cuervo/internal/domain/profile"
)

func TestWorkspace_DispatchIfAppliesUnderLock(t *testing.T) {
	w := &Workspace{}
	w.Dispatch(profile.Insert{Profile: profile.NewDraft(uuid.New())})

	profiles, target, err := w.DispatchIf(profile.ByIndex(0), func(current profile.Collection, p profile.Profile) ([]profile.Command, error) {
		assert.Len(t, current, 1)
		return []profile.Command{profile.UpdateMeta{Target: profile.ByIndex(0), Field: profile.FieldTitle, Value: "Work"}}, nil
	})

	require.NoError(t, err)
	assert.True(t, target.IsDraft())
	assert.Equal(t, "Work", profiles[0].Title)
}

func TestWorkspace_DispatchIfRefusalLeavesState(t *testing.T) {
	w := &Workspace{}
	w.Dispatch(profile.Insert{Profile: profile.NewDraft(uuid.New())})
	before := w.Snapshot()
	refused := errors.New("refused")

	_, _, err := w.DispatchIf(profile.ByIndex(0), func(profile.Collection, profile.Profile) ([]profile.Command, error) {
		return []profile.Command{profile.Remove{Target: profile.ByIndex(0)}}, refused
	})

	assert.ErrorIs(t, err, refused)
	assert.Equal(t, before, w.Snapshot())
}

func TestWorkspace_DispatchIfUnknownTarget(t *testing.T) {
	w := &Workspace{}
	called := false

	_, _, err := w.DispatchIf(profile.ByIndex(3), func(profile.Collection, profile.Profile) ([]profile.Command, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
	assert.False(t, called)
}

func TestWorkspaces_EndForgetsOwner(t *testing.T) {
	ws := NewWorkspaces()
	owner := uuid.New()
	ws.For(owner).Dispatch(profile.Insert{Profile: profile.NewDraft(owner)})

	ws.End(owner)

	assert.Empty(t, ws.For(owner).Snapshot())
}
