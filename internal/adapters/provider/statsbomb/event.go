// Package statsbomb adapts StatsBomb open-data event streams to the SPADL
// conversion engine and the minutes extractor.
package statsbomb

import (
	"strconv"

	"github.com/okian/spadl/internal/domain/convert"
)

// Ref is the {id, name} pair StatsBomb uses for every lookup value.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Key returns the id as a string, or "" when the reference is absent.
func (r *Ref) Key() string {
	if r == nil || (r.ID == 0 && r.Name == "") {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

// NameOf returns the name, or "" when the reference is absent.
func (r *Ref) NameOf() string {
	if r == nil {
		return ""
	}
	return r.Name
}

// Point is a raw [x, y] or [x, y, z] location on the 120 x 80 grid.
type Point []float64

func (p Point) location() *convert.Location {
	if len(p) < 2 {
		return nil
	}
	return convert.Loc(p[0], p[1])
}

// Event is one record of a StatsBomb events file. Only the attributes the
// converters read are declared.
type Event struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Period    int    `json:"period"`
	Timestamp string `json:"timestamp"`
	Minute    int    `json:"minute"`
	Second    int    `json:"second"`
	Type      Ref    `json:"type"`
	Team      Ref    `json:"team"`
	Player    *Ref   `json:"player,omitempty"`
	Location  Point  `json:"location,omitempty"`

	Tactics       *Tactics      `json:"tactics,omitempty"`
	Pass          *Pass         `json:"pass,omitempty"`
	Shot          *Shot         `json:"shot,omitempty"`
	Carry         *Carry        `json:"carry,omitempty"`
	Dribble       *Outcome      `json:"dribble,omitempty"`
	FoulCommitted *Card         `json:"foul_committed,omitempty"`
	BadBehaviour  *Card         `json:"bad_behaviour,omitempty"`
	Duel          *Duel         `json:"duel,omitempty"`
	Interception  *Outcome      `json:"interception,omitempty"`
	Goalkeeper    *Goalkeeper   `json:"goalkeeper,omitempty"`
	Clearance     *Clearance    `json:"clearance,omitempty"`
	Substitution  *Substitution `json:"substitution,omitempty"`
}

// Tactics carries the lineup of a Starting XI event.
type Tactics struct {
	Formation int            `json:"formation"`
	Lineup    []LineupPlayer `json:"lineup"`
}

// LineupPlayer is one entry of Tactics.Lineup.
type LineupPlayer struct {
	Player       Ref `json:"player"`
	Position     Ref `json:"position"`
	JerseyNumber int `json:"jersey_number"`
}

// Pass attributes.
type Pass struct {
	EndLocation Point `json:"end_location,omitempty"`
	Height      *Ref  `json:"height,omitempty"`
	Type        *Ref  `json:"type,omitempty"`
	BodyPart    *Ref  `json:"body_part,omitempty"`
	Outcome     *Ref  `json:"outcome,omitempty"`
	Cross       bool  `json:"cross,omitempty"`
}

// Shot attributes.
type Shot struct {
	EndLocation Point `json:"end_location,omitempty"`
	Type        *Ref  `json:"type,omitempty"`
	BodyPart    *Ref  `json:"body_part,omitempty"`
	Outcome     *Ref  `json:"outcome,omitempty"`
}

// Carry attributes.
type Carry struct {
	EndLocation Point `json:"end_location,omitempty"`
}

// Outcome is the attribute block of events that only carry an outcome.
type Outcome struct {
	Outcome *Ref `json:"outcome,omitempty"`
}

// Card is the attribute block of fouls and bad behaviour.
type Card struct {
	Card *Ref `json:"card,omitempty"`
}

// Duel attributes.
type Duel struct {
	Type    *Ref `json:"type,omitempty"`
	Outcome *Ref `json:"outcome,omitempty"`
}

// Goalkeeper attributes.
type Goalkeeper struct {
	Type     *Ref `json:"type,omitempty"`
	Outcome  *Ref `json:"outcome,omitempty"`
	BodyPart *Ref `json:"body_part,omitempty"`
}

// Clearance attributes.
type Clearance struct {
	BodyPart *Ref `json:"body_part,omitempty"`
}

// Substitution attributes.
type Substitution struct {
	Replacement Ref  `json:"replacement"`
	Outcome     *Ref `json:"outcome,omitempty"`
}
