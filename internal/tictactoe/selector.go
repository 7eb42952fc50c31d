package tictactoe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrOracleUnavailable = errors.New("oracle unavailable")

// Oracle - untrusted supplier of move suggestions.
type Oracle interface {
	Suggest(ctx context.Context, board entity.Board, mark entity.Mark) (int, error)
}

type Selector struct {
	logger *slog.Logger

	rnd           Rand
	oracle        Oracle
	oracleTimeout time.Duration
}

// NewSelector - oracle may be nil, then Hard always searches. A zero timeout leaves
// the oracle bounded only by the caller's context.
func NewSelector(logger *slog.Logger, rnd Rand, oracle Oracle, oracleTimeout time.Duration) *Selector {
	return &Selector{
		logger:        logger.With("component", "selector"),
		rnd:           rnd,
		oracle:        oracle,
		oracleTimeout: oracleTimeout,
	}
}

// SelectMove - picks a move for mark. On Hard the oracle is asked first; any failure
// of the oracle counts as no suggestion.
func (that *Selector) SelectMove(ctx context.Context, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error) {
	if err := checkDecidable(board, mark, difficulty); err != nil {
		return -1, err
	}

	var suggestion *int
	if difficulty == entity.Hard && that.oracle != nil {
		suggestion = that.suggest(ctx, board, mark)
	}

	return that.Decide(board, mark, difficulty, suggestion)
}

// Decide - maps the difficulty to a strategy. suggestion is only used on Hard and only
// when it points to an empty cell.
func (that *Selector) Decide(board entity.Board, mark entity.Mark, difficulty entity.Difficulty, suggestion *int) (int, error) {
	log := that.logger.With("method", "Decide", "difficulty", difficulty.String(), "mark", string(mark))

	if err := checkDecidable(board, mark, difficulty); err != nil {
		return -1, err
	}

	switch difficulty {
	case entity.Easy:
		return RandomMove(board, that.rnd)
	case entity.Normal:
		return HeuristicMove(board, mark, that.rnd)
	case entity.Hard:
		if suggestion != nil {
			err := validateSuggestion(board, *suggestion)
			if err == nil {
				log.Debug("using external suggestion", "cell", *suggestion)
				return *suggestion, nil
			}

			log.Debug("external suggestion rejected, searching", "error", err)
		}

		return BestMove(board, mark)
	default:
		return -1, fmt.Errorf("%w: %d", apperror.ErrUnknownDifficulty, int(difficulty))
	}
}

// suggest - asks the oracle within the timeout. The result channel is buffered so a
// late oracle never blocks its goroutine.
func (that *Selector) suggest(ctx context.Context, board entity.Board, mark entity.Mark) *int {
	log := that.logger.With("method", "suggest")

	if that.oracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.oracleTimeout)
		defer cancel()
	}

	type result struct {
		cell int
		err  error
	}

	resultCh := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: fmt.Errorf("%w: recovered from panic: %v", ErrOracleUnavailable, r)}
			}
		}()

		cell, err := that.oracle.Suggest(ctx, board, mark)
		resultCh <- result{cell: cell, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			log.Debug("oracle failed", "error", res.err)
			return nil
		}

		return &res.cell
	case <-ctx.Done():
		log.Debug("oracle did not answer in time", "error", ctx.Err())
		return nil
	}
}

func checkDecidable(board entity.Board, mark entity.Mark, difficulty entity.Difficulty) error {
	if !difficulty.IsValid() {
		return fmt.Errorf("%w: %d", apperror.ErrUnknownDifficulty, int(difficulty))
	}

	if err := board.Validate(); err != nil {
		return err
	}

	return checkPlayable(board, mark)
}

func validateSuggestion(board entity.Board, cell int) error {
	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d is out of range", apperror.ErrInvalidSuggestion, cell)
	}

	if board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d is occupied", apperror.ErrInvalidSuggestion, cell)
	}

	return nil
}
