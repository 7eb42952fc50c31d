// Package replay keeps the move log of a match and rebuilds past board states from it.
package replay

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Log - append-only move log of the live match plus the log of the last completed match.
// A Log is owned by one game and must not be shared between goroutines.
type Log struct {
	moves     []entity.Move
	lastMatch []entity.Move
}

func NewLog() *Log {
	return &Log{}
}

// Restore - rebuilds a Log from stored move lists.
func Restore(moves, lastMatch []entity.Move) *Log {
	return &Log{
		moves:     clone(moves),
		lastMatch: clone(lastMatch),
	}
}

// Record - places move on board and appends it to the log. The log must describe board
// exactly, otherwise the caller is out of sync. Nothing changes when an error is returned.
func (that *Log) Record(board entity.Board, move entity.Move) (entity.Board, error) {
	if filled := board.Filled(); filled != len(that.moves) {
		return board, fmt.Errorf("%w: %d moves logged, %d cells filled", apperror.ErrHistoryDesync, len(that.moves), filled)
	}

	next, err := board.Place(move.Cell, move.Mark)
	if err != nil {
		return board, fmt.Errorf("failed to record move: %w", err)
	}

	that.moves = append(that.moves, move)

	return next, nil
}

// StartNewGame - keeps the current log as the last completed match and clears the live one.
func (that *Log) StartNewGame() {
	that.lastMatch = that.moves
	that.moves = nil
}

func (that *Log) Len() int {
	return len(that.moves)
}

func (that *Log) Moves() []entity.Move {
	return clone(that.moves)
}

func (that *Log) LastMatch() []entity.Move {
	return clone(that.lastMatch)
}

// Reconstruct - board after the first k moves, starting from an empty board.
func Reconstruct(moves []entity.Move, k int) (entity.Board, error) {
	if k < 0 || k > len(moves) {
		return entity.Board{}, fmt.Errorf("%w: %d not in [0, %d]", apperror.ErrReplayIndexOutOfRange, k, len(moves))
	}

	var board entity.Board
	for i, move := range moves[:k] {
		next, err := board.Place(move.Cell, move.Mark)
		if err != nil {
			return entity.Board{}, fmt.Errorf("failed to replay move %d: %w", i, err)
		}

		board = next
	}

	return board, nil
}

// Timeline - every snapshot of the match, from the empty board to the final position.
func Timeline(moves []entity.Move) ([]entity.Board, error) {
	boards := make([]entity.Board, 0, len(moves)+1)
	boards = append(boards, entity.Board{})

	for i, move := range moves {
		next, err := boards[i].Place(move.Cell, move.Mark)
		if err != nil {
			return nil, fmt.Errorf("failed to replay move %d: %w", i, err)
		}

		boards = append(boards, next)
	}

	return boards, nil
}

func clone(moves []entity.Move) []entity.Move {
	if moves == nil {
		return nil
	}

	return append(make([]entity.Move, 0, len(moves)), moves...)
}
