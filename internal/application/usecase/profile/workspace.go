package profile

import (
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/cuervo/internal/domain/profile"
)

// Workspace is the in-memory profile collection of one owner session. Every
// transition runs to completion under the lock, so no caller ever observes a
// half-applied command.
type Workspace struct {
	mu       sync.Mutex
	profiles profile.Collection
}

func (w *Workspace) Dispatch(cmds ...profile.Command) profile.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, cmd := range cmds {
		w.profiles = profile.Apply(w.profiles, cmd)
	}
	return append(profile.Collection{}, w.profiles...)
}

// DispatchIf finds the profile at loc and lets decide pick the commands to
// apply, all under one lock. A nil command list or an error leaves the
// collection untouched.
func (w *Workspace) DispatchIf(
	loc profile.Locator,
	decide func(current profile.Collection, target profile.Profile) ([]profile.Command, error),
) (profile.Collection, profile.Profile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, target, ok := w.profiles.Find(loc)
	if !ok {
		return nil, profile.Profile{}, profile.ErrProfileNotFound
	}
	cmds, err := decide(w.profiles, target)
	if err != nil {
		return nil, target, err
	}
	for _, cmd := range cmds {
		w.profiles = profile.Apply(w.profiles, cmd)
	}
	return append(profile.Collection{}, w.profiles...), target, nil
}

func (w *Workspace) Snapshot() profile.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(profile.Collection{}, w.profiles...)
}

// Workspaces maps owners to their session workspace.
type Workspaces struct {
	mu      sync.Mutex
	byOwner map[uuid.UUID]*Workspace
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{byOwner: make(map[uuid.UUID]*Workspace)}
}

func (s *Workspaces) For(ownerID uuid.UUID) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.byOwner[ownerID]
	if !ok {
		w = &Workspace{}
		s.byOwner[ownerID] = w
	}
	return w
}

// End forgets the owner's collection. It is only a cache of remote state, so
// nothing else needs to happen.
func (s *Workspaces) End(ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byOwner, ownerID)
}
