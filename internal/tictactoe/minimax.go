package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	winScore = 10

	// scores are always within [-winScore, winScore]
	minScore = -winScore - 1
	maxScore = winScore + 1
)

// BestMove - full depth minimax for mark. Faster wins and slower losses score higher,
// ties between cells go to the lowest index.
func BestMove(board entity.Board, mark entity.Mark) (int, error) {
	if err := checkPlayable(board, mark); err != nil {
		return -1, err
	}

	bestCell := -1
	bestScore := minScore
	alpha := minScore

	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = mark

		// a child that cannot beat alpha never returns more than alpha, so pruning
		// does not change which cell is picked
		score := minimax(next, mark, 1, false, alpha, maxScore)
		if score > bestScore {
			bestScore = score
			bestCell = cell
		}

		alpha = max(alpha, bestScore)
	}

	return bestCell, nil
}

// minimax - scores board from mark's point of view; depth is the number of plies
// played since the root call.
func minimax(board entity.Board, mark entity.Mark, depth int, maximizing bool, alpha, beta int) int {
	outcome := entity.Evaluate(board)
	switch outcome.Kind {
	case entity.Won:
		if outcome.Winner == mark {
			return winScore - depth
		}
		return depth - winScore
	case entity.Draw:
		return 0
	case entity.Ongoing:
	}

	if maximizing {
		best := minScore
		for _, cell := range board.EmptyCells() {
			next := board
			next[cell] = mark

			best = max(best, minimax(next, mark, depth+1, false, alpha, beta))
			alpha = max(alpha, best)
			if alpha >= beta {
				break
			}
		}

		return best
	}

	best := maxScore
	opponent := mark.Opponent()
	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = opponent

		best = min(best, minimax(next, mark, depth+1, true, alpha, beta))
		beta = min(beta, best)
		if alpha >= beta {
			break
		}
	}

	return best
}
