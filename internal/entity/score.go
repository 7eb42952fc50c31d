package entity

// Score - finished games counted per result.
type Score struct {
	X     int `json:"x"`
	O     int `json:"o"`
	Draws int `json:"draws"`
}

// Tally - counts a terminal outcome. Ongoing outcomes are ignored.
func (that *Score) Tally(outcome Outcome) {
	switch outcome.Kind {
	case Won:
		switch outcome.Winner {
		case PlayerX:
			that.X++
		case PlayerO:
			that.O++
		case EmptyCell:
		}
	case Draw:
		that.Draws++
	case Ongoing:
	}
}

func (that Score) Total() int {
	return that.X + that.O + that.Draws
}
