// Package repository keeps conversion results addressable by game id.
package repository

import (
	"context"
	"time"

	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/schema"
)

// Status of a submitted game.
type Status string

// Result statuses.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Result is everything produced for one game. Actions are only set when
// conversion and validation both succeeded; PlayerGames are independent of
// the action pipeline.
type Result struct {
	JobID       string             `json:"job_id"`
	GameID      string             `json:"game_id"`
	Provider    string             `json:"provider"`
	Status      Status             `json:"status"`
	Actions     []model.Action     `json:"actions,omitempty"`
	PlayerGames []model.PlayerGame `json:"player_games,omitempty"`

	ConvertError string           `json:"convert_error,omitempty"`
	Violations   []schema.Failure `json:"violations,omitempty"`
	MinutesError string           `json:"minutes_error,omitempty"`

	SubmittedAt time.Time     `json:"submitted_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

// Failed reports whether the action pipeline failed.
func (r *Result) Failed() bool {
	return r.ConvertError != "" || len(r.Violations) > 0
}

// Store provides read/write access to conversion results.
type Store interface {
	// Put stores r, replacing any earlier result for the same game.
	Put(ctx context.Context, r Result) error

	// Get returns the result for gameID or ErrNotFound.
	Get(ctx context.Context, gameID string) (Result, error)

	// List returns stored game ids in ascending order.
	List(ctx context.Context) []string

	// Delete removes a game's result. Deleting an unknown game is a no-op.
	Delete(ctx context.Context, gameID string)

	// Count returns the number of stored games.
	Count(ctx context.Context) int
}
