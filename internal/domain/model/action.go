// Package model contains the canonical SPADL records passed between layers.
package model

// Action is one atomic on-ball action in the canonical SPADL schema.
// Coordinates are metres on the canonical pitch and TimeSeconds is the
// normalized match clock (see normalize.TimeSeconds).
type Action struct {
	GameID          string  `json:"game_id"`
	OriginalEventID *string `json:"original_event_id"` // nil for synthesized actions
	ActionID        int     `json:"action_id"`
	PeriodID        int     `json:"period_id"`
	TimeSeconds     float64 `json:"time_seconds"`
	TeamID          string  `json:"team_id"`
	PlayerID        string  `json:"player_id"`
	StartX          float64 `json:"start_x"`
	StartY          float64 `json:"start_y"`
	EndX            float64 `json:"end_x"`
	EndY            float64 `json:"end_y"`
	BodyPartID      int     `json:"bodypart_id"`
	TypeID          int     `json:"type_id"`
	ResultID        int     `json:"result_id"`
	BodyPartName    string  `json:"bodypart_name,omitempty"`
	TypeName        string  `json:"type_name,omitempty"`
	ResultName      string  `json:"result_name,omitempty"`
}

// HasNames reports whether the optional *_name columns are populated.
func (a *Action) HasNames() bool {
	return a.BodyPartName != "" || a.TypeName != "" || a.ResultName != ""
}

// Game is the per-game context a conversion needs.
type Game struct {
	GameID     string
	HomeTeamID string
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
