package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/replay"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const maxBodySize = 16 << 10

var errBadRequest = errors.New("bad request")

type decideRequest struct {
	Board      entity.Board `json:"board"`
	Mark       string       `json:"mark"`
	Difficulty string       `json:"difficulty,omitempty"`
	Suggestion *int         `json:"suggestion,omitempty"`
}

type decideResponse struct {
	Cell int `json:"cell"`
}

type replayRequest struct {
	Moves []entity.Move `json:"moves"`
	K     *int          `json:"k,omitempty"`
}

type replayResponse struct {
	Board    *entity.Board  `json:"board,omitempty"`
	Timeline []entity.Board `json:"timeline,omitempty"`
}

type newGameRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
	HumanMark  string `json:"human_mark,omitempty"`
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDecide - stateless move decision. A suggestion in the request replaces the oracle.
func (that *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	mark, err := entity.ParseMark(req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := that.parseDifficulty(req.Difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	var cell int
	if req.Suggestion != nil {
		cell, err = that.decider.Decide(req.Board, mark, difficulty, req.Suggestion)
	} else {
		cell, err = that.decider.SelectMove(r.Context(), req.Board, mark, difficulty)
	}

	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, decideResponse{Cell: cell})
}

// handleReplay - board after k moves of the posted log, or every snapshot when k is absent.
func (that *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req replayRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.K == nil {
		timeline, err := replay.Timeline(req.Moves)
		if err != nil {
			that.writeError(w, err)
			return
		}

		that.writeJSON(w, http.StatusOK, replayResponse{Timeline: timeline})
		return
	}

	board, err := replay.Reconstruct(req.Moves, *req.K)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, replayResponse{Board: &board})
}

func (that *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	score, err := that.games.Scores(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, score)
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := that.parseDifficulty(req.Difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if req.Mode == "" {
		req.Mode = entity.WithBotMode
	}

	humanMark, err := entity.ParseHumanMark(req.HumanMark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.NewGame(r.Context(), req.Mode, difficulty, humanMark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, fmt.Errorf("%w: cell is required", errBadRequest))
		return
	}

	game, err := that.games.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleGameReplay(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(chi.URLParam(r, "k"))
	if err != nil {
		that.writeError(w, fmt.Errorf("%w: replay index: %w", errBadRequest, err))
		return
	}

	lastMatch := r.URL.Query().Get("match") == "last"

	board, err := that.games.Replay(r.Context(), chi.URLParam(r, "id"), k, lastMatch)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, replayResponse{Board: &board})
}

func (that *Server) parseDifficulty(value string) (entity.Difficulty, error) {
	if value == "" {
		return that.defaultDifficulty, nil
	}

	return entity.ParseDifficulty(value)
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		that.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	case usecase.IsClientError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
