package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Difficulty - ordered tier of the automated player.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

func (that Difficulty) String() string {
	switch that {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(that))
	}
}

func (that Difficulty) IsValid() bool {
	return that >= Easy && that <= Hard
}

func ParseDifficulty(value string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return Easy, nil
	case "normal":
		return Normal, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, value)
	}
}

func (that Difficulty) MarshalText() ([]byte, error) {
	if !that.IsValid() {
		return nil, fmt.Errorf("%w: %d", apperror.ErrUnknownDifficulty, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Difficulty) UnmarshalText(text []byte) error {
	difficulty, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}

	*that = difficulty

	return nil
}
