package entity

type OutcomeKind int

const (
	Ongoing OutcomeKind = iota
	Won
	Draw
)

// Outcome - result of a board. It is always derived from the board and never stored on its own.
type Outcome struct {
	Kind   OutcomeKind
	Winner Mark
	// Line - winning line, only set when Kind is Won.
	Line Line
}

func (that OutcomeKind) String() string {
	switch that {
	case Ongoing:
		return "ongoing"
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

func (that Outcome) IsTerminal() bool {
	return that.Kind != Ongoing
}

// Evaluate - returns the first line of three equal marks in WinCombos order, a draw
// for a full board and Ongoing otherwise.
func Evaluate(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome{Kind: Won, Winner: a, Line: combo}
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == EmptyCell {
			return Outcome{Kind: Ongoing}
		}
	}

	return Outcome{Kind: Draw}
}
