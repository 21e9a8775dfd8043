package statsbomb

import (
	"sort"

	"github.com/okian/spadl/internal/domain/convert"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
)

// StatsBomb event type names.
const (
	TypePass           = "Pass"
	TypeDribble        = "Dribble"
	TypeCarry          = "Carry"
	TypeFoulCommitted  = "Foul Committed"
	TypeDuel           = "Duel"
	TypeInterception   = "Interception"
	TypeShot           = "Shot"
	TypeOwnGoalAgainst = "Own Goal Against"
	TypeOwnGoalFor     = "Own Goal For"
	TypeGoalKeeper     = "Goal Keeper"
	TypeClearance      = "Clearance"
	TypeMiscontrol     = "Miscontrol"
	TypeStartingXI     = "Starting XI"
	TypeSubstitution   = "Substitution"
	TypeBadBehaviour   = "Bad Behaviour"
	TypeHalfEnd        = "Half End"
)

// Source is how StatsBomb drafts are normalized: a one-based 120 x 80 grid
// where every team attacks toward increasing x.
var Source = convert.Source{
	Name:         "statsbomb",
	Grid:         normalize.StatsBombGrid,
	TeamRelative: true,
}

// parseFunc classifies one event. It returns the canonical type (NonAction
// to drop the event), result and body part; empty result or body part fall
// back to the engine defaults.
type parseFunc func(e *Event) (typ, result, bodyPart string)

var table = map[string]parseFunc{
	TypePass:           parsePass,
	TypeDribble:        parseDribble,
	TypeCarry:          parseCarry,
	TypeFoulCommitted:  parseFoul,
	TypeDuel:           parseDuel,
	TypeInterception:   parseInterception,
	TypeShot:           parseShot,
	TypeOwnGoalAgainst: parseOwnGoalAgainst,
	TypeGoalKeeper:     parseGoalkeeper,
	TypeClearance:      parseClearance,
	TypeMiscontrol:     parseMiscontrol,
}

// TypeTable returns the StatsBomb event types that can produce an action,
// sorted by name.
func TypeTable() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Converter adapts StatsBomb events to the conversion engine.
type Converter struct {
	engine *convert.Engine
	source convert.Source
}

// NewConverter wraps engine. defaultBodyPart, when not empty, replaces the
// engine default for events without a body part.
func NewConverter(engine *convert.Engine, defaultBodyPart string) *Converter {
	src := Source
	src.DefaultBodyPart = defaultBodyPart
	return &Converter{engine: engine, source: src}
}

// Drafts classifies events in provider order. Events of unknown types, repeated
// event ids and Own Goal For events produce nothing.
func Drafts(events []Event) []convert.Draft {
	drafts := make([]convert.Draft, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		e := &events[i]
		if e.ID != "" {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
		}
		parse, ok := table[e.Type.Name]
		if !ok {
			continue
		}
		typ, result, bodyPart := parse(e)
		if typ == registry.NonAction {
			continue
		}
		drafts = append(drafts, convert.Draft{
			EventID:  e.ID,
			Period:   e.Period,
			Minute:   e.Minute,
			Second:   e.Second,
			TeamID:   e.Team.Key(),
			PlayerID: e.Player.Key(),
			Type:     typ,
			Result:   result,
			BodyPart: bodyPart,
			Start:    e.Location.location(),
			End:      endLocation(e),
		})
	}
	return drafts
}

// Convert maps one game's events to canonical actions.
func (c *Converter) Convert(events []Event, game model.Game) ([]model.Action, error) {
	return c.engine.Convert(game, c.source, Drafts(events))
}

func endLocation(e *Event) *convert.Location {
	switch {
	case e.Pass != nil && len(e.Pass.EndLocation) >= 2:
		return e.Pass.EndLocation.location()
	case e.Shot != nil && len(e.Shot.EndLocation) >= 2:
		return e.Shot.EndLocation.location()
	case e.Carry != nil && len(e.Carry.EndLocation) >= 2:
		return e.Carry.EndLocation.location()
	default:
		return nil
	}
}

func bodyPart(r *Ref) string {
	if r == nil || r.Name == "" {
		return ""
	}
	switch r.Name {
	case "Head":
		return registry.Head
	case "Foot", "Left Foot", "Right Foot", "Drop Kick":
		// footedness is not kept
		return registry.Foot
	default:
		return registry.Other
	}
}

func parsePass(e *Event) (string, string, string) {
	p := e.Pass
	if p == nil {
		p = &Pass{}
	}
	typ := registry.Pass
	part := bodyPart(p.BodyPart)
	switch p.Type.NameOf() {
	case "Free Kick":
		typ = registry.FreekickShort
		if p.Height.NameOf() == "High Pass" || p.Cross {
			typ = registry.FreekickCrossed
		}
	case "Corner":
		typ = registry.CornerShort
		if p.Height.NameOf() == "High Pass" || p.Cross {
			typ = registry.CornerCrossed
		}
	case "Goal Kick":
		typ = registry.GoalKick
	case "Throw-in":
		typ = registry.ThrowIn
		part = registry.Other
	default:
		if p.Cross {
			typ = registry.Cross
		}
	}

	result := registry.Success
	switch p.Outcome.NameOf() {
	case "Incomplete", "Out":
		result = registry.Fail
	case "Pass Offside":
		result = registry.Offside
	case "Injury Clearance", "Unknown":
		return registry.NonAction, "", ""
	}
	return typ, result, part
}

func parseDribble(e *Event) (string, string, string) {
	result := registry.Success
	if e.Dribble != nil && e.Dribble.Outcome.NameOf() == "Incomplete" {
		result = registry.Fail
	}
	return registry.TakeOn, result, registry.Foot
}

func parseCarry(*Event) (string, string, string) {
	return registry.Dribble, registry.Success, registry.Foot
}

func parseFoul(e *Event) (string, string, string) {
	result := registry.Fail
	if e.FoulCommitted != nil {
		switch e.FoulCommitted.Card.NameOf() {
		case "Yellow Card", "Second Yellow":
			result = registry.YellowCard
		case "Red Card":
			result = registry.RedCard
		}
	}
	return registry.Foul, result, registry.Foot
}

func parseDuel(e *Event) (string, string, string) {
	if e.Duel == nil || e.Duel.Type.NameOf() != "Tackle" {
		return registry.NonAction, "", ""
	}
	result := registry.Success
	switch e.Duel.Outcome.NameOf() {
	case "Lost In Play", "Lost Out":
		result = registry.Fail
	}
	return registry.Tackle, result, registry.Foot
}

func parseInterception(e *Event) (string, string, string) {
	result := registry.Success
	if e.Interception != nil {
		switch e.Interception.Outcome.NameOf() {
		case "Lost In Play", "Lost Out":
			result = registry.Fail
		}
	}
	return registry.Interception, result, registry.Foot
}

func parseShot(e *Event) (string, string, string) {
	s := e.Shot
	if s == nil {
		s = &Shot{}
	}
	typ := registry.Shot
	switch s.Type.NameOf() {
	case "Free Kick":
		typ = registry.ShotFreekick
	case "Penalty":
		typ = registry.ShotPenalty
	}
	result := registry.Fail
	if s.Outcome.NameOf() == "Goal" {
		result = registry.Success
	}
	return typ, result, bodyPart(s.BodyPart)
}

func parseOwnGoalAgainst(*Event) (string, string, string) {
	return registry.BadTouch, registry.OwnGoal, registry.Foot
}

func parseGoalkeeper(e *Event) (string, string, string) {
	g := e.Goalkeeper
	if g == nil {
		return registry.NonAction, "", ""
	}
	var typ string
	switch g.Type.NameOf() {
	case "Shot Saved":
		typ = registry.KeeperSave
	case "Collected", "Keeper Sweeper":
		typ = registry.KeeperClaim
	case "Punch":
		typ = registry.KeeperPunch
	default:
		return registry.NonAction, "", ""
	}
	result := registry.Success
	switch g.Outcome.NameOf() {
	case "In Play Danger", "No Touch":
		result = registry.Fail
	}
	return typ, result, bodyPart(g.BodyPart)
}

func parseClearance(e *Event) (string, string, string) {
	var part string
	if e.Clearance != nil {
		part = bodyPart(e.Clearance.BodyPart)
	}
	return registry.Clearance, registry.Success, part
}

func parseMiscontrol(*Event) (string, string, string) {
	return registry.BadTouch, registry.Fail, registry.Foot
}
