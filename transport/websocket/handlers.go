package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	actionNewGame = "game:new"
	actionTurn    = "game:turn"
	actionRestart = "game:restart"
	actionReplay  = "game:replay"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload - client request body; which fields matter depends on the action.
type Payload struct {
	GameID     string `json:"game_id,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	HumanMark  string `json:"human_mark,omitempty"`
	Cell       *int   `json:"cell,omitempty"`
	K          *int   `json:"k,omitempty"`
	LastMatch  bool   `json:"last_match,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.Game  `json:"game,omitempty"`
	Board *entity.Board `json:"board,omitempty"`
	Error string        `json:"error,omitempty"`
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, sess *session) error {
	log := that.logger.With("method", "handleNewGame")

	payload, err := decodePayload(msg)
	if err != nil {
		return sess.sendError(msg.Action, err.Error())
	}

	difficulty := that.defaultDifficulty
	if payload.Difficulty != "" {
		if difficulty, err = entity.ParseDifficulty(payload.Difficulty); err != nil {
			return sess.sendError(msg.Action, err.Error())
		}
	}

	mode := payload.Mode
	if mode == "" {
		mode = entity.WithBotMode
	}

	humanMark, err := entity.ParseHumanMark(payload.HumanMark)
	if err != nil {
		return sess.sendError(msg.Action, err.Error())
	}

	game, err := that.games.NewGame(ctx, mode, difficulty, humanMark)
	if err != nil {
		return that.sendFailure(sess, msg.Action, err)
	}

	log.Info("game created", "gameID", game.ID, "mode", mode)

	return sess.sendMessage(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, sess *session) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return sess.sendError(msg.Action, err.Error())
	}

	if payload.GameID == "" {
		return sess.sendError(msg.Action, "game_id is required")
	}

	if payload.Cell == nil {
		return sess.sendError(msg.Action, "cell is required")
	}

	game, err := that.games.MakeTurn(ctx, payload.GameID, *payload.Cell)
	if err != nil {
		return that.sendFailure(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleRestart(ctx context.Context, msg *Message, sess *session) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return sess.sendError(msg.Action, err.Error())
	}

	if payload.GameID == "" {
		return sess.sendError(msg.Action, "game_id is required")
	}

	game, err := that.games.Restart(ctx, payload.GameID)
	if err != nil {
		return that.sendFailure(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleReplay(ctx context.Context, msg *Message, sess *session) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return sess.sendError(msg.Action, err.Error())
	}

	if payload.GameID == "" {
		return sess.sendError(msg.Action, "game_id is required")
	}

	if payload.K == nil {
		return sess.sendError(msg.Action, "k is required")
	}

	board, err := that.games.Replay(ctx, payload.GameID, *payload.K, payload.LastMatch)
	if err != nil {
		return that.sendFailure(sess, msg.Action, err)
	}

	return sess.sendMessage(msg.Action, ResponsePayload{Board: &board})
}

// sendFailure - client errors are echoed back, anything else is logged and reported generically.
func (that *Server) sendFailure(sess *session, action string, err error) error {
	if usecase.IsClientError(err) || errors.Is(err, apperror.ErrGameNotFound) {
		return sess.sendError(action, err.Error())
	}

	if sendErr := sess.sendError(action, "internal error"); sendErr != nil {
		return sendErr
	}

	return fmt.Errorf("%s failed: %w", action, err)
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
