package entity

// Move - a mark placed on a cell. Moves are never modified after creation.
type Move struct {
	Cell int  `json:"cell"`
	Mark Mark `json:"mark"`
}

func NewMove(cell int, mark Mark) Move {
	return Move{Cell: cell, Mark: mark}
}
