// Package convert turns classified provider drafts into the ordered canonical
// SPADL action sequence of one game.
//
// Provider adapters decide what each raw event means (which drafts to emit);
// the engine owns everything that is the same for every provider: name
// resolution, clock and coordinate normalization, ordering, direction of
// play, clearance end points, action ids and synthetic dribbles.
package convert

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
)

// Dribble insertion thresholds.
const (
	MinDribbleLength   = 3.0  // metres
	MaxDribbleLength   = 60.0 // metres
	MaxDribbleDuration = 10.0 // seconds
)

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultBodyPart sets the body part used when neither the draft nor the
// source names one.
func WithDefaultBodyPart(name string) Option {
	return func(e *Engine) {
		e.defaultBodyPart = name
	}
}

// WithDribbles toggles insertion of synthetic dribbles.
func WithDribbles(enabled bool) Option {
	return func(e *Engine) {
		e.dribbles = enabled
	}
}

// Engine converts drafts into canonical actions. It holds no per-game state
// and is safe for concurrent use.
type Engine struct {
	reg             *registry.Registry
	pitch           normalize.Pitch
	defaultBodyPart string
	dribbles        bool
}

// New creates an engine bound to reg and pitch.
func New(reg *registry.Registry, pitch normalize.Pitch, opts ...Option) *Engine {
	e := &Engine{
		reg:             reg,
		pitch:           pitch,
		defaultBodyPart: registry.Foot,
		dribbles:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry names are resolved against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Pitch returns the canonical pitch.
func (e *Engine) Pitch() normalize.Pitch { return e.pitch }

type ids struct {
	typ, result, bodyPart int
}

// Convert builds the action sequence for one game. Drafts typed non_action
// are dropped. The first invalid timestamp or unknown name fails the whole
// game.
func (e *Engine) Convert(game model.Game, src Source, drafts []Draft) ([]model.Action, error) {
	if err := src.Grid.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidSource, "source %q: %v", src.Name, err)
	}
	bodyPart := e.defaultBodyPart
	if src.DefaultBodyPart != "" {
		bodyPart = src.DefaultBodyPart
	}

	actions := make([]model.Action, 0, len(drafts))
	for i := range drafts {
		d := &drafts[i]
		if d.Type == registry.NonAction {
			continue
		}
		a, err := e.action(game, src, bodyPart, d)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].PeriodID != actions[j].PeriodID {
			return actions[i].PeriodID < actions[j].PeriodID
		}
		return actions[i].TimeSeconds < actions[j].TimeSeconds
	})

	if src.TeamRelative && game.HomeTeamID != "" {
		e.fixDirection(actions, game.HomeTeamID)
	}
	e.fixClearances(actions)
	renumber(actions)

	if e.dribbles {
		var err error
		if actions, err = e.addDribbles(actions); err != nil {
			return nil, err
		}
	}
	return actions, nil
}

func (e *Engine) action(game model.Game, src Source, defaultBodyPart string, d *Draft) (model.Action, error) {
	result := d.Result
	if result == "" {
		result = registry.Success
	}
	bodyPart := d.BodyPart
	if bodyPart == "" {
		bodyPart = defaultBodyPart
	}
	id, err := e.resolve(d.Type, result, bodyPart)
	if err != nil {
		return model.Action{}, errors.Wrapf(err, "event %s", d.EventID)
	}

	t, err := normalize.TimeSeconds(d.Period, d.Minute, d.Second)
	if err != nil {
		return model.Action{}, errors.Wrapf(err, "event %s", d.EventID)
	}

	start := d.Start
	if start == nil {
		x, y := src.Grid.Origin()
		start = &Location{X: x, Y: y}
	}
	end := d.End
	if end == nil {
		end = start
	}
	sx, sy := e.pitch.FromGrid(src.Grid, start.X, start.Y)
	ex, ey := e.pitch.FromGrid(src.Grid, end.X, end.Y)

	return model.Action{
		GameID:          game.GameID,
		OriginalEventID: model.StringPtr(d.EventID),
		PeriodID:        d.Period,
		TimeSeconds:     t,
		TeamID:          d.TeamID,
		PlayerID:        d.PlayerID,
		StartX:          sx,
		StartY:          sy,
		EndX:            ex,
		EndY:            ey,
		TypeID:          id.typ,
		ResultID:        id.result,
		BodyPartID:      id.bodyPart,
		TypeName:        d.Type,
		ResultName:      result,
		BodyPartName:    bodyPart,
	}, nil
}

func (e *Engine) resolve(typ, result, bodyPart string) (ids, error) {
	var out ids
	var err error
	if out.typ, err = e.reg.ActionTypes.Index(typ); err != nil {
		return ids{}, err
	}
	if out.result, err = e.reg.Results.Index(result); err != nil {
		return ids{}, err
	}
	if out.bodyPart, err = e.reg.BodyParts.Index(bodyPart); err != nil {
		return ids{}, err
	}
	return out, nil
}

// fixDirection mirrors every action not performed by the home team so that
// the home team attacks toward increasing x.
func (e *Engine) fixDirection(actions []model.Action, homeTeamID string) {
	for i := range actions {
		a := &actions[i]
		if a.TeamID == homeTeamID {
			continue
		}
		a.StartX, a.StartY = e.pitch.Mirror(a.StartX, a.StartY)
		a.EndX, a.EndY = e.pitch.Mirror(a.EndX, a.EndY)
	}
}

// fixClearances ends every clearance where the following action starts. The
// last action keeps its own end point.
func (e *Engine) fixClearances(actions []model.Action) {
	clearance, err := e.reg.ActionTypes.Index(registry.Clearance)
	if err != nil {
		return
	}
	for i := 0; i < len(actions)-1; i++ {
		if actions[i].TypeID != clearance {
			continue
		}
		actions[i].EndX = actions[i+1].StartX
		actions[i].EndY = actions[i+1].StartY
	}
}

// addDribbles inserts a synthetic dribble between an action and the next one
// when the same team keeps the ball in the same period, the gap between the
// first action's end and the next one's start is within the dribble length
// bounds, and less than MaxDribbleDuration seconds pass.
func (e *Engine) addDribbles(actions []model.Action) ([]model.Action, error) {
	id, err := e.resolve(registry.Dribble, registry.Success, registry.Foot)
	if err != nil {
		return nil, err
	}

	out := make([]model.Action, 0, len(actions)+len(actions)/4)
	for i := range actions {
		out = append(out, actions[i])
		if i == len(actions)-1 {
			break
		}
		prev, next := &actions[i], &actions[i+1]
		if prev.TeamID != next.TeamID || prev.PeriodID != next.PeriodID {
			continue
		}
		if next.TimeSeconds-prev.TimeSeconds >= MaxDribbleDuration {
			continue
		}
		dist := math.Hypot(prev.EndX-next.StartX, prev.EndY-next.StartY)
		if dist < MinDribbleLength || dist > MaxDribbleLength {
			continue
		}
		out = append(out, model.Action{
			GameID:       next.GameID,
			PeriodID:     next.PeriodID,
			TimeSeconds:  (prev.TimeSeconds + next.TimeSeconds) / 2,
			TeamID:       next.TeamID,
			PlayerID:     next.PlayerID,
			StartX:       prev.EndX,
			StartY:       prev.EndY,
			EndX:         next.StartX,
			EndY:         next.StartY,
			TypeID:       id.typ,
			ResultID:     id.result,
			BodyPartID:   id.bodyPart,
			TypeName:     registry.Dribble,
			ResultName:   registry.Success,
			BodyPartName: registry.Foot,
		})
	}
	renumber(out)
	return out, nil
}

func renumber(actions []model.Action) {
	for i := range actions {
		actions[i].ActionID = i
	}
}
