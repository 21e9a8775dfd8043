// Package normalize maps provider coordinates and clocks onto the canonical
// SPADL pitch and match timeline.
package normalize

import "github.com/cockroachdb/errors"

// Canonical pitch dimensions in metres.
const (
	DefaultFieldLength = 105.0
	DefaultFieldWidth  = 68.0
)

// Pitch is the canonical coordinate space. The origin is the corner where
// y = 0 lies on the right touchline of the team attacking towards x = Length.
type Pitch struct {
	Length float64
	Width  float64
}

// DefaultPitch returns the 105 x 68 canonical pitch.
func DefaultPitch() Pitch {
	return Pitch{Length: DefaultFieldLength, Width: DefaultFieldWidth}
}

// Grid describes a provider's raw coordinate grid. Width and Height are the
// number of unit cells along each axis; OneBased providers index cells from 1.
// Provider y grows from the left touchline toward the right touchline, which
// is why FromGrid flips it.
type Grid struct {
	Width    float64
	Height   float64
	OneBased bool
}

// StatsBombGrid is the 120 x 80 StatsBomb grid, indexed from 1.
var StatsBombGrid = Grid{Width: 119, Height: 79, OneBased: true}

// Validate checks that the grid has a positive extent.
func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Wrapf(ErrInvalidGrid, "%vx%v", g.Width, g.Height)
	}
	return nil
}

// Origin returns the raw coordinates of the grid's first cell.
func (g Grid) Origin() (float64, float64) {
	if g.OneBased {
		return 1, 1
	}
	return 0, 0
}

// FromGrid rescales a raw provider point onto the pitch, flipping y.
func (p Pitch) FromGrid(g Grid, x, y float64) (float64, float64) {
	if g.OneBased {
		x--
		y--
	}
	return (x / g.Width) * p.Length, p.Width - (y/g.Height)*p.Width
}

// Mirror reflects a canonical point through the centre spot.
func (p Pitch) Mirror(x, y float64) (float64, float64) {
	return p.Length - x, p.Width - y
}

// Contains reports whether a canonical point lies on the pitch.
func (p Pitch) Contains(x, y float64) bool {
	return x >= 0 && x <= p.Length && y >= 0 && y <= p.Width
}
