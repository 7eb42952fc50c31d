package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mark - content of a single cell. PlayerX always moves first.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const (
	BoardSize  = 9
	CenterCell = 4
)

// Line - indexes of three cells in a row, column or diagonal.
type Line [3]int

var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - 3x3 grid in row-major order. Boards are values, copying one is a snapshot.
type Board [BoardSize]Mark

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent - returns the other player's mark.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func ParseMark(value string) (Mark, error) {
	mark := Mark(value)
	if !mark.IsPlayer() {
		return EmptyCell, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, value)
	}

	return mark, nil
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

func (that Board) IsEmpty(cell int) bool {
	return IsValidCell(cell) && that[cell] == EmptyCell
}

// EmptyCells - indexes of free cells in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// Filled - number of occupied cells.
func (that Board) Filled() int {
	filled := 0
	for _, cell := range that {
		if cell != EmptyCell {
			filled++
		}
	}

	return filled
}

func (that Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// Place - returns a copy of the board with mark put on cell.
func (that Board) Place(cell int, mark Mark) (Board, error) {
	if !IsValidCell(cell) {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !mark.IsPlayer() {
		return that, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if that[cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return that, nil
}

// NextTurn - whose move it is on a valid board.
func (that Board) NextTurn() Mark {
	if that.Count(PlayerX) > that.Count(PlayerO) {
		return PlayerO
	}

	return PlayerX
}

// Validate - checks the turn alternation invariant: X moves first, so X has the same
// number of marks as O or exactly one more. Unknown cell values are rejected too.
func (that Board) Validate() error {
	for i, cell := range that {
		if cell != EmptyCell && !cell.IsPlayer() {
			return fmt.Errorf("%w: unknown mark %q in cell %d", apperror.ErrInvalidBoard, cell, i)
		}
	}

	diff := that.Count(PlayerX) - that.Count(PlayerO)
	if diff < 0 || diff > 1 {
		return fmt.Errorf("%w: X has %d marks, O has %d", apperror.ErrInvalidBoard, that.Count(PlayerX), that.Count(PlayerO))
	}

	return nil
}

// UnmarshalJSON - accepts exactly BoardSize cells. A plain fixed array would be
// zero-padded or silently truncated.
func (that *Board) UnmarshalJSON(data []byte) error {
	var cells []Mark
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidBoard, err)
	}

	if len(cells) != BoardSize {
		return fmt.Errorf("%w: %d cells, want %d", apperror.ErrInvalidBoard, len(cells), BoardSize)
	}

	copy(that[:], cells)

	return nil
}

func (that Board) String() string {
	buf := make([]byte, 0, BoardSize+2)
	for i, cell := range that {
		if i > 0 && i%3 == 0 {
			buf = append(buf, '/')
		}

		if cell == EmptyCell {
			buf = append(buf, '.')
			continue
		}

		buf = append(buf, cell[0])
	}

	return string(buf)
}
