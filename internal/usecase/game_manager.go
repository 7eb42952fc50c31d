package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/replay"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type scoreRepo interface {
	Add(ctx context.Context, outcome entity.Outcome) error
	Get(ctx context.Context) (entity.Score, error)
}

type moveSelector interface {
	SelectMove(ctx context.Context, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

// GameManager - runs game sessions. Calls for the same game are serialized, so a move is
// never requested while the previous one is still being decided.
type GameManager struct {
	logger *slog.Logger

	gameRepo  gameRepo
	scoreRepo scoreRepo
	selector  moveSelector

	locksMu sync.Mutex
	locks   map[string]*gameLock
}

// gameLock - held by every in-flight call for one game; dropped from the map when the
// last holder leaves, so expired sessions leave nothing behind.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, scoreRepo scoreRepo, selector moveSelector) *GameManager {
	return &GameManager{
		logger: logger.With("component", "gameManager"),

		gameRepo:  gameRepo,
		scoreRepo: scoreRepo,
		selector:  selector,

		locks: make(map[string]*gameLock),
	}
}

// NewGame - creates a session. When the engine plays X it moves right away.
func (that *GameManager) NewGame(ctx context.Context, mode string, difficulty entity.Difficulty, humanMark entity.Mark) (*entity.Game, error) {
	game, err := entity.NewGame(uuid.NewString(), mode, difficulty, humanMark)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	unlock := that.lock(game.ID)
	defer unlock()

	log := replay.NewLog()
	if err = that.botTurn(ctx, game, log); err != nil {
		return nil, fmt.Errorf("bot failed to make first turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "gameID", game.ID, "mode", game.Mode, "difficulty", game.Difficulty.String())

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeTurn - plays cell for whoever's turn it is, then lets the engine answer.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error) {
	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if game.IsBotTurn() {
		return game, apperror.ErrNotYourTurn
	}

	log := replay.Restore(game.Moves, game.LastMatch)
	if err = that.playMove(ctx, game, log, cell, game.Turn); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.botTurn(ctx, game, log); err != nil {
		return nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Restart - starts a new match in the same session. A finished match is kept for replay.
func (that *GameManager) Restart(ctx context.Context, gameID string) (*entity.Game, error) {
	unlock := that.lock(gameID)
	defer unlock()

	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	log := replay.Restore(game.Moves, game.LastMatch)
	if game.IsFinished() {
		log.StartNewGame()
		game.LastMatch = log.LastMatch()
	}

	game.Reset()
	log = replay.Restore(game.Moves, game.LastMatch)

	if err = that.botTurn(ctx, game, log); err != nil {
		return nil, fmt.Errorf("bot failed to make first turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Replay - board after the first k moves of the live match, or of the last completed
// match when lastMatch is set.
func (that *GameManager) Replay(ctx context.Context, gameID string, k int, lastMatch bool) (entity.Board, error) {
	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return entity.Board{}, err
	}

	moves := game.Moves
	if lastMatch {
		moves = game.LastMatch
	}

	board, err := replay.Reconstruct(moves, k)
	if err != nil {
		return entity.Board{}, fmt.Errorf("failed to replay game %s: %w", gameID, err)
	}

	return board, nil
}

func (that *GameManager) Scores(ctx context.Context) (entity.Score, error) {
	score, err := that.scoreRepo.Get(ctx)
	if err != nil {
		return entity.Score{}, fmt.Errorf("failed to get scores: %w", err)
	}

	return score, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, gameID string) error {
	unlock := that.lock(gameID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

// botTurn - lets the engine move if it is its turn.
func (that *GameManager) botTurn(ctx context.Context, game *entity.Game, log *replay.Log) error {
	if !game.IsBotTurn() {
		return nil
	}

	cell, err := that.selector.SelectMove(ctx, game.Board, game.BotMark(), game.Difficulty)
	if err != nil {
		return fmt.Errorf("failed to select move: %w", err)
	}

	return that.playMove(ctx, game, log, cell, game.BotMark())
}

func (that *GameManager) playMove(ctx context.Context, game *entity.Game, log *replay.Log, cell int, mark entity.Mark) error {
	board, err := log.Record(game.Board, entity.NewMove(cell, mark))
	if err != nil {
		return err
	}

	game.Board = board
	game.Moves = log.Moves()

	outcome := game.UpdateGameState()
	if !outcome.IsTerminal() {
		return nil
	}

	game.Score.Tally(outcome)

	// the aggregate counters are informational, a failure there must not lose the move
	if err = that.scoreRepo.Add(ctx, outcome); err != nil {
		that.logger.Error("failed to add score", "gameID", game.ID, "error", err)
	}

	that.logger.Info("game finished", "gameID", game.ID, "outcome", outcome.Kind.String(), "winner", string(outcome.Winner))

	return nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) lock(gameID string) func() {
	that.locksMu.Lock()
	gl, ok := that.locks[gameID]
	if !ok {
		gl = &gameLock{}
		that.locks[gameID] = gl
	}
	gl.refs++
	that.locksMu.Unlock()

	gl.mu.Lock()

	return func() {
		gl.mu.Unlock()

		that.locksMu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(that.locks, gameID)
		}
		that.locksMu.Unlock()
	}
}

// IsClientError - errors caused by the request rather than by the service.
func IsClientError(err error) bool {
	for _, target := range []error{
		apperror.ErrGameFinished,
		apperror.ErrNotYourTurn,
		apperror.ErrCellOccupied,
		apperror.ErrInvalidCell,
		apperror.ErrInvalidMark,
		apperror.ErrInvalidBoard,
		apperror.ErrNoLegalMove,
		apperror.ErrUnknownDifficulty,
		apperror.ErrUnknownGameMode,
		apperror.ErrReplayIndexOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
