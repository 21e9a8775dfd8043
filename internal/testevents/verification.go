package testevents

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/internal/domain/types"
)

// ErrVerification marks a game whose served results are wrong.
var ErrVerification = errors.New("verification failed")

// waitForActions polls until the game leaves the pending state.
func waitForActions(ctx context.Context, config *Config, client *HTTPClient, gameID string) (types.ActionsResponse, error) {
	deadline := time.Now().Add(config.WaitTimeout)
	for {
		resp, status, err := client.Actions(ctx, gameID)
		if err != nil {
			return resp, err
		}
		if status != http.StatusAccepted {
			if status != http.StatusOK {
				return resp, errors.Wrapf(ErrVerification, "game %s: actions returned %d: %s", gameID, status, resp.Error)
			}
			return resp, nil
		}
		if time.Now().After(deadline) {
			return resp, errors.Wrapf(ErrVerification, "game %s still pending after %s", gameID, config.WaitTimeout)
		}
		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		case <-time.After(config.PollInterval):
		}
	}
}

// verifyMatch checks the served actions against the canonical schema and the
// served minutes against the match length.
func verifyMatch(ctx context.Context, config *Config, client *HTTPClient, contract *schema.Schema, m *Match) (int, error) {
	resp, err := waitForActions(ctx, config, client, m.GameID)
	if err != nil {
		return 0, err
	}
	if err := verifyActions(contract, m, &resp); err != nil {
		return 0, err
	}

	mins, status, err := client.Minutes(ctx, m.GameID)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, errors.Wrapf(ErrVerification, "game %s: minutes returned %d: %s", m.GameID, status, mins.Error)
	}
	if err := verifyMinutes(m, &mins); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func verifyActions(contract *schema.Schema, m *Match, resp *types.ActionsResponse) error {
	if resp.Count == 0 || resp.Count != len(resp.Actions) {
		return errors.Wrapf(ErrVerification, "game %s: %d actions, count %d", m.GameID, len(resp.Actions), resp.Count)
	}
	if _, err := contract.ValidateActions(resp.Actions); err != nil {
		return errors.Wrapf(ErrVerification, "game %s: %v", m.GameID, err)
	}
	for i, a := range resp.Actions {
		if a.ActionID != i {
			return errors.Wrapf(ErrVerification, "game %s: action %d has id %d", m.GameID, i, a.ActionID)
		}
		if a.GameID != m.GameID {
			return errors.Wrapf(ErrVerification, "game %s: action %d belongs to game %s", m.GameID, i, a.GameID)
		}
	}
	return nil
}

func verifyMinutes(m *Match, resp *types.MinutesResponse) error {
	if len(resp.PlayerGames) != m.Appearances() {
		return errors.Wrapf(ErrVerification, "game %s: %d player records, want %d", m.GameID, len(resp.PlayerGames), m.Appearances())
	}
	if resp.TotalMinutes != m.ExpectedMinutes() {
		return errors.Wrapf(ErrVerification, "game %s: %d minutes played, want %d", m.GameID, resp.TotalMinutes, m.ExpectedMinutes())
	}
	return nil
}

// contractFor returns the schema the server validates against.
func contractFor(config *Config) *schema.Schema {
	pitch := normalize.DefaultPitch()
	if config.FieldLength > 0 && config.FieldWidth > 0 {
		pitch = normalize.Pitch{Length: config.FieldLength, Width: config.FieldWidth}
	}
	return schema.New(registry.Default(), pitch)
}
