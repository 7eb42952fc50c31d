package tictactoe

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Rand - source of randomness for the random strategies. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedRand - seeded Rand that is safe to share between games.
func NewLockedRand(seed int64) Rand {
	return &lockedRand{
		rnd: rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *lockedRand) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}

// checkPlayable - strategies never run on a terminal board.
func checkPlayable(board entity.Board, mark entity.Mark) error {
	if !mark.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	outcome := entity.Evaluate(board)
	switch outcome.Kind {
	case entity.Won:
		return fmt.Errorf("%w: %s already won", apperror.ErrNoLegalMove, outcome.Winner)
	case entity.Draw:
		return fmt.Errorf("%w: board is full", apperror.ErrNoLegalMove)
	case entity.Ongoing:
	}

	return nil
}

// RandomMove - uniformly random empty cell.
func RandomMove(board entity.Board, rnd Rand) (int, error) {
	cells := board.EmptyCells()
	if len(cells) == 0 {
		return -1, fmt.Errorf("%w: board is full", apperror.ErrNoLegalMove)
	}

	return cells[rnd.Intn(len(cells))], nil
}
