// Package types contains the request and response bodies shared by the HTTP
// API and its clients.
package types

import (
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/schema"
)

// Submission statuses.
const (
	StatusQueued    = "queued"
	StatusDuplicate = "duplicate"
)

// SubmitResponse acknowledges an asynchronous submission.
type SubmitResponse struct {
	Status    string `json:"status"`
	GameID    string `json:"game_id"`
	JobID     string `json:"job_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// ActionsResponse carries the converted actions of one game. Violations is
// set when the converted actions failed validation.
type ActionsResponse struct {
	GameID     string           `json:"game_id"`
	Status     string           `json:"status"`
	Count      int              `json:"count"`
	Actions    []model.Action   `json:"actions"`
	Violations []schema.Failure `json:"violations,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// MinutesResponse carries the player-game records of one game.
type MinutesResponse struct {
	GameID       string             `json:"game_id"`
	Status       string             `json:"status"`
	TotalMinutes int                `json:"total_minutes"`
	PlayerGames  []model.PlayerGame `json:"player_games"`
	Error        string             `json:"error,omitempty"`
}

// ValidateResponse is the outcome of validating a batch of action rows.
type ValidateResponse struct {
	Valid      bool             `json:"valid"`
	Rows       int              `json:"rows"`
	Violations []schema.Failure `json:"violations,omitempty"`
}

// GamesResponse lists stored games.
type GamesResponse struct {
	Games []string `json:"games"`
	Count int      `json:"count"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
