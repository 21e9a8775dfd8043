package convert

import "github.com/okian/spadl/internal/domain/normalize"

// Location is a point on a provider grid, in raw provider units.
type Location struct {
	X float64
	Y float64
}

// Loc is shorthand for &Location{x, y}.
func Loc(x, y float64) *Location {
	return &Location{X: x, Y: y}
}

// Draft is a provider event already classified into canonical names but not
// yet normalized. Provider adapters emit zero or more drafts per raw event in
// provider order.
type Draft struct {
	EventID  string
	Period   int
	Minute   int
	Second   int
	TeamID   string
	PlayerID string

	Type     string
	Result   string // empty means success
	BodyPart string // empty means the source or engine default

	Start *Location // nil falls back to the grid origin
	End   *Location // nil falls back to Start
}

// Source describes how a provider's drafts should be normalized.
type Source struct {
	Name string
	Grid normalize.Grid

	// TeamRelative is set when every team's coordinates are recorded as if
	// it attacks toward increasing x.
	TeamRelative bool

	// DefaultBodyPart overrides the engine default for this source.
	DefaultBodyPart string
}
