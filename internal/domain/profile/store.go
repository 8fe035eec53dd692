package profile

import (
	"strconv"

	"github.com/google/uuid"
)

// Locator addresses one profile in a Collection. Persisted profiles are
// addressed by id, drafts by their position.
type Locator interface {
	matches(index int, p Profile) bool
	String() string
}

type ByID uuid.UUID

func (l ByID) matches(_ int, p Profile) bool {
	return p.ID != nil && *p.ID == uuid.UUID(l)
}

func (l ByID) String() string { return uuid.UUID(l).String() }

// ByIndex only ever matches a draft: once a profile has an id it must be
// addressed through ByID.
type ByIndex int

func (l ByIndex) matches(index int, p Profile) bool {
	return p.ID == nil && index == int(l)
}

func (l ByIndex) String() string { return "#" + strconv.Itoa(int(l)) }

// LocatorFor returns the locator the store expects for the profile at index.
func LocatorFor(index int, p Profile) Locator {
	if p.ID != nil {
		return ByID(*p.ID)
	}
	return ByIndex(index)
}

type Collection []Profile

func (c Collection) Find(loc Locator) (int, Profile, bool) {
	for i, p := range c {
		if loc.matches(i, p) {
			return i, p, true
		}
	}
	return -1, Profile{}, false
}

func (c Collection) ChosenCount() int {
	n := 0
	for _, p := range c {
		if p.Chosen {
			n++
		}
	}
	return n
}

func (c Collection) Chosen() (Profile, bool) {
	for _, p := range c {
		if p.Chosen {
			return p, true
		}
	}
	return Profile{}, false
}

type MetaField string

const (
	FieldTitle       MetaField = "title"
	FieldDescription MetaField = "description"
)

// Command is one store transition. The set is closed to this package.
type Command interface {
	isCommand()
}

type SetAll struct{ Profiles []Profile }

type Insert struct{ Profile Profile }

type Remove struct{ Target Locator }

// Replace swaps the matched profile for Profile in place.
type Replace struct {
	Target  Locator
	Profile Profile
}

type Choose struct{ Target Locator }

type UpdateMeta struct {
	Target Locator
	Field  MetaField
	Value  string
}

type UpdateData struct {
	Target Locator
	Patch  DataPatch
}

type ToggleExpanded struct{ Target Locator }

type CollapseAll struct{}

func (SetAll) isCommand()         {}
func (Insert) isCommand()         {}
func (Remove) isCommand()         {}
func (Replace) isCommand()        {}
func (Choose) isCommand()         {}
func (UpdateMeta) isCommand()     {}
func (UpdateData) isCommand()     {}
func (ToggleExpanded) isCommand() {}
func (CollapseAll) isCommand()    {}

// Apply is the pure transition function of the profile store. It never
// mutates state and never fails: a command whose target does not match any
// profile returns an equal copy of state.
func Apply(state Collection, cmd Command) Collection {
	switch c := cmd.(type) {
	case SetAll:
		return append(Collection{}, c.Profiles...)

	case Insert:
		next := make(Collection, 0, len(state)+1)
		next = append(next, state...)
		return append(next, c.Profile)

	case Remove:
		next := make(Collection, 0, len(state))
		for i, p := range state {
			if c.Target != nil && c.Target.matches(i, p) {
				continue
			}
			next = append(next, p)
		}
		return next

	case Replace:
		return mapMatched(state, c.Target, func(p *Profile) {
			*p = c.Profile
		})

	case Choose:
		if c.Target == nil {
			return clone(state)
		}
		if _, _, ok := state.Find(c.Target); !ok {
			return clone(state)
		}
		next := clone(state)
		for i := range next {
			next[i].Chosen = c.Target.matches(i, next[i])
		}
		return next

	case UpdateMeta:
		return mapMatched(state, c.Target, func(p *Profile) {
			switch c.Field {
			case FieldTitle:
				p.Title = c.Value
			case FieldDescription:
				p.Description = c.Value
			}
		})

	case UpdateData:
		return mapMatched(state, c.Target, func(p *Profile) {
			p.Data = p.Data.Merge(c.Patch)
		})

	case ToggleExpanded:
		return mapMatched(state, c.Target, func(p *Profile) {
			p.Expanded = !p.Expanded
		})

	case CollapseAll:
		next := clone(state)
		for i := range next {
			next[i].Expanded = false
		}
		return next
	}
	return clone(state)
}

func clone(state Collection) Collection {
	return append(make(Collection, 0, len(state)), state...)
}

func mapMatched(state Collection, loc Locator, fn func(p *Profile)) Collection {
	next := clone(state)
	if loc == nil {
		return next
	}
	for i := range next {
		if loc.matches(i, next[i]) {
			fn(&next[i])
		}
	}
	return next
}
