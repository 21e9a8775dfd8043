// Package registry holds the fixed, ordered catalogs of SPADL action types,
// results and body parts.
//
// An Enum is immutable once built: ids are contiguous from 0 in declaration
// order and never change. New versions may only append names (Extend).
// Registries are plain values handed to the schema, normalizer and converter;
// there is no package-level mutable state.
package registry

import (
	"github.com/cockroachdb/errors"
)

// Kind names one of the three catalogs.
type Kind string

// Catalog kinds.
const (
	KindActionType Kind = "actiontype"
	KindResult     Kind = "result"
	KindBodyPart   Kind = "bodypart"
)

// Version of the default catalog.
const Version = "v1"

// Action type names.
const (
	Pass            = "pass"
	Cross           = "cross"
	ThrowIn         = "throw_in"
	FreekickCrossed = "freekick_crossed"
	FreekickShort   = "freekick_short"
	CornerCrossed   = "corner_crossed"
	CornerShort     = "corner_short"
	TakeOn          = "take_on"
	Foul            = "foul"
	Tackle          = "tackle"
	Interception    = "interception"
	Shot            = "shot"
	ShotPenalty     = "shot_penalty"
	ShotFreekick    = "shot_freekick"
	KeeperSave      = "keeper_save"
	KeeperClaim     = "keeper_claim"
	KeeperPunch     = "keeper_punch"
	KeeperPickUp    = "keeper_pick_up"
	Clearance       = "clearance"
	BadTouch        = "bad_touch"
	NonAction       = "non_action"
	Dribble         = "dribble"
	GoalKick        = "goalkick"
)

// Result names.
const (
	Fail       = "fail"
	Success    = "success"
	Offside    = "offside"
	OwnGoal    = "owngoal"
	YellowCard = "yellow_card"
	RedCard    = "red_card"
)

// Body part names.
const (
	Foot      = "foot"
	Head      = "head"
	Other     = "other"
	HeadOther = "head/other"
	FootLeft  = "foot_left"
	FootRight = "foot_right"
)

var (
	actionTypeNames = []string{
		Pass, Cross, ThrowIn, FreekickCrossed, FreekickShort, CornerCrossed,
		CornerShort, TakeOn, Foul, Tackle, Interception, Shot, ShotPenalty,
		ShotFreekick, KeeperSave, KeeperClaim, KeeperPunch, KeeperPickUp,
		Clearance, BadTouch, NonAction, Dribble, GoalKick,
	}
	resultNames   = []string{Fail, Success, Offside, OwnGoal, YellowCard, RedCard}
	bodyPartNames = []string{Foot, Head, Other, HeadOther, FootLeft, FootRight}
)

// Enum is an ordered, immutable name catalog.
type Enum struct {
	kind  Kind
	names []string
	index map[string]int
}

// NewEnum builds an enum whose ids follow the order of names.
func NewEnum(kind Kind, names ...string) (*Enum, error) {
	e := &Enum{
		kind:  kind,
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if _, ok := e.index[name]; ok {
			return nil, errors.Wrapf(ErrDuplicateName, "%s %q", kind, name)
		}
		e.index[name] = len(e.names)
		e.names = append(e.names, name)
	}
	return e, nil
}

// Kind returns the catalog kind.
func (e *Enum) Kind() Kind { return e.kind }

// Len returns the number of entries.
func (e *Enum) Len() int { return len(e.names) }

// Names returns a copy of the names in id order.
func (e *Enum) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Index returns the id registered for name.
func (e *Enum) Index(name string) (int, error) {
	id, ok := e.index[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownEnumValue, "%s name %q", e.kind, name)
	}
	return id, nil
}

// Name returns the name registered for id.
func (e *Enum) Name(id int) (string, error) {
	if id < 0 || id >= len(e.names) {
		return "", errors.Wrapf(ErrUnknownEnumValue, "%s id %d", e.kind, id)
	}
	return e.names[id], nil
}

// HasID reports whether id is registered.
func (e *Enum) HasID(id int) bool { return id >= 0 && id < len(e.names) }

// HasName reports whether name is registered.
func (e *Enum) HasName(name string) bool {
	_, ok := e.index[name]
	return ok
}

// MustIndex is Index for names known at compile time; it panics on unknown names.
func (e *Enum) MustIndex(name string) int {
	id, err := e.Index(name)
	if err != nil {
		panic(err)
	}
	return id
}

// Extend returns a new enum with names appended after the existing entries.
// Existing ids are preserved, so the result is backward compatible.
func (e *Enum) Extend(names ...string) (*Enum, error) {
	all := make([]string, 0, len(e.names)+len(names))
	all = append(all, e.names...)
	all = append(all, names...)
	return NewEnum(e.kind, all...)
}

// Registry bundles the three SPADL catalogs.
type Registry struct {
	Version     string
	ActionTypes *Enum
	Results     *Enum
	BodyParts   *Enum
}

// New assembles a registry from explicit enums.
func New(version string, actionTypes, results, bodyParts *Enum) (*Registry, error) {
	if actionTypes == nil || results == nil || bodyParts == nil {
		return nil, errors.New("registry: all three enums are required")
	}
	return &Registry{
		Version:     version,
		ActionTypes: actionTypes,
		Results:     results,
		BodyParts:   bodyParts,
	}, nil
}

// Default builds the v1 SPADL catalog.
func Default() *Registry {
	actionTypes, err := NewEnum(KindActionType, actionTypeNames...)
	if err != nil {
		panic(err)
	}
	results, err := NewEnum(KindResult, resultNames...)
	if err != nil {
		panic(err)
	}
	bodyParts, err := NewEnum(KindBodyPart, bodyPartNames...)
	if err != nil {
		panic(err)
	}
	return &Registry{
		Version:     Version,
		ActionTypes: actionTypes,
		Results:     results,
		BodyParts:   bodyParts,
	}
}

// Of returns the enum for kind.
func (r *Registry) Of(kind Kind) (*Enum, error) {
	switch kind {
	case KindActionType:
		return r.ActionTypes, nil
	case KindResult:
		return r.Results, nil
	case KindBodyPart:
		return r.BodyParts, nil
	default:
		return nil, errors.Wrapf(ErrUnknownEnumValue, "kind %q", kind)
	}
}

// ListOf returns the ordered names of kind.
func (r *Registry) ListOf(kind Kind) ([]string, error) {
	e, err := r.Of(kind)
	if err != nil {
		return nil, err
	}
	return e.Names(), nil
}
