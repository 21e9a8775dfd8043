package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/okian/spadl/internal/adapters/repository"
	service "github.com/okian/spadl/internal/app"
	"github.com/okian/spadl/internal/domain/minutes"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/types"
	"github.com/okian/spadl/pkg/logger"
)

// gameRequest is the path and query of the game endpoints.
type gameRequest struct {
	GameID     string `validate:"required,max=64,printascii"`
	HomeTeamID string `validate:"omitempty,max=64,printascii"`
	Provider   string `validate:"omitempty,oneof=statsbomb"`
}

func (s *Server) parseGame(r *http.Request) (gameRequest, error) {
	req := gameRequest{
		GameID:     chi.URLParam(r, "gameID"),
		HomeTeamID: r.URL.Query().Get("home_team_id"),
		Provider:   r.URL.Query().Get("provider"),
	}
	if err := s.validate.StructCtx(r.Context(), req); err != nil {
		return req, errors.Mark(errors.Wrap(err, "invalid game request"), ErrBadRequest)
	}
	return req, nil
}

// job reads the request body into a conversion job.
func (s *Server) job(w http.ResponseWriter, r *http.Request) (model.Job, error) {
	req, err := s.parseGame(r)
	if err != nil {
		return model.Job{}, err
	}
	body, err := s.readBody(w, r)
	if err != nil {
		return model.Job{}, err
	}
	return model.Job{
		Game:     model.Game{GameID: req.GameID, HomeTeamID: req.HomeTeamID},
		Provider: req.Provider,
		Payload:  body,
	}, nil
}

// HandleSubmitGame handles POST /games/{gameID}: the body is the provider's
// event document and the game is converted asynchronously.
func (s *Server) HandleSubmitGame(w http.ResponseWriter, r *http.Request) {
	j, err := s.job(w, r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	j, err = s.deps.Submit(r.Context(), j)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, types.SubmitResponse{
			Status: types.StatusQueued, GameID: j.Game.GameID, JobID: j.ID,
		})
	case errors.Is(err, service.ErrDuplicate):
		writeJSON(w, http.StatusOK, types.SubmitResponse{
			Status: types.StatusDuplicate, GameID: j.Game.GameID, Duplicate: true,
		})
	case errors.Is(err, service.ErrBackpressure):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, err)
	case errors.Is(err, service.ErrEmptyGameID), errors.Is(err, service.ErrUnsupportedProvider):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error(r.Context(), "submit failed", logger.String("game_id", j.Game.GameID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
	}
}

// HandleConvertGame handles POST /convert/{gameID}: the game is converted
// synchronously and the actions are returned without being stored.
func (s *Server) HandleConvertGame(w http.ResponseWriter, r *http.Request) {
	j, err := s.job(w, r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	res, err := s.deps.ConvertGame(r.Context(), j)
	if err != nil && res.GameID == "" {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeActions(w, &res)
}

// HandleGetActions handles GET /games/{gameID}/actions.
func (s *Server) HandleGetActions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}
	writeActions(w, &res)
}

// HandleGetMinutes handles GET /games/{gameID}/minutes.
func (s *Server) HandleGetMinutes(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	switch {
	case res.Status == repository.StatusPending:
		status = http.StatusAccepted
	case res.MinutesError != "":
		status = http.StatusUnprocessableEntity
	}
	players := res.PlayerGames
	if players == nil {
		players = []model.PlayerGame{}
	}
	writeJSON(w, status, types.MinutesResponse{
		GameID:       res.GameID,
		Status:       string(res.Status),
		TotalMinutes: minutes.Total(players),
		PlayerGames:  players,
		Error:        res.MinutesError,
	})
}

// HandleDiscardGame handles DELETE /games/{gameID}.
func (s *Server) HandleDiscardGame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGame(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if err := s.deps.Discard(r.Context(), req.GameID); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListGames handles GET /games.
func (s *Server) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.deps.Games(r.Context())
	if games == nil {
		games = []string{}
	}
	writeJSON(w, http.StatusOK, types.GamesResponse{Games: games, Count: len(games)})
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) (repository.Result, bool) {
	req, err := s.parseGame(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return repository.Result{}, false
	}
	res, err := s.deps.Result(r.Context(), req.GameID)
	if err != nil {
		writeError(w, statusOf(err), err)
		return repository.Result{}, false
	}
	return res, true
}

// writeActions replies 200 for converted games, 202 while pending and 422
// when conversion or validation failed.
func writeActions(w http.ResponseWriter, res *repository.Result) {
	status := http.StatusOK
	switch {
	case res.Status == repository.StatusPending:
		status = http.StatusAccepted
	case res.Failed():
		status = http.StatusUnprocessableEntity
	}
	actions := res.Actions
	if actions == nil {
		actions = []model.Action{}
	}
	writeJSON(w, status, types.ActionsResponse{
		GameID:     res.GameID,
		Status:     string(res.Status),
		Count:      len(actions),
		Actions:    actions,
		Violations: res.Violations,
		Error:      res.ConvertError,
	})
}
