package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// HeuristicMove - single ply tactics: win now, block the opponent, take the center,
// otherwise a random empty cell.
func HeuristicMove(board entity.Board, mark entity.Mark, rnd Rand) (int, error) {
	if err := checkPlayable(board, mark); err != nil {
		return -1, err
	}

	if cell, ok := completingCell(board, mark); ok {
		return cell, nil
	}

	if cell, ok := completingCell(board, mark.Opponent()); ok {
		return cell, nil
	}

	if board[entity.CenterCell] == entity.EmptyCell {
		return entity.CenterCell, nil
	}

	return RandomMove(board, rnd)
}

// completingCell - first empty cell, in index order, that gives mark three in a row.
func completingCell(board entity.Board, mark entity.Mark) (int, bool) {
	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = mark

		if outcome := entity.Evaluate(next); outcome.Kind == entity.Won && outcome.Winner == mark {
			return cell, true
		}
	}

	return -1, false
}
