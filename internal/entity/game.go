package entity

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerTie Mark = "-"
)

const (
	// WithBotMode - a human plays against the engine.
	WithBotMode = "pve"
	// PrivateMode - two humans share one board.
	PrivateMode = "pvp"

	// RandomSide - lets the server choose the human player's mark.
	RandomSide = "random"
)

// Game - a play session. Moves is the live move log of the current match, LastMatch
// keeps the log of the previous match so it can be replayed after a restart.
type Game struct {
	ID         string     `json:"id"`
	Board      Board      `json:"board"`
	Winner     Mark       `json:"winner"`
	WinLine    []int      `json:"win_line,omitempty"`
	Status     string     `json:"status"`
	Turn       Mark       `json:"player_turn"`
	Mode       string     `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	HumanMark  Mark       `json:"human_mark,omitempty"`
	Moves      []Move     `json:"moves"`
	LastMatch  []Move     `json:"last_match,omitempty"`
	Score      Score      `json:"score"`
}

func NewGame(id, mode string, difficulty Difficulty, humanMark Mark) (*Game, error) {
	if mode != WithBotMode && mode != PrivateMode {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameMode, mode)
	}

	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %d", apperror.ErrUnknownDifficulty, int(difficulty))
	}

	if mode == WithBotMode && !humanMark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, humanMark)
	}

	if mode == PrivateMode {
		humanMark = EmptyCell
	}

	return &Game{
		ID:         id,
		Turn:       PlayerX,
		Status:     StatusOngoing,
		Mode:       mode,
		Difficulty: difficulty,
		HumanMark:  humanMark,
		Moves:      []Move{},
	}, nil
}

// Outcome - evaluates the current board.
func (that *Game) Outcome() Outcome {
	return Evaluate(that.Board)
}

func (that *Game) UpdateGameState() Outcome {
	outcome := that.Outcome()

	switch outcome.Kind {
	// one player wins
	case Won:
		that.Winner = outcome.Winner
		that.WinLine = outcome.Line[:]
		that.Status = StatusFinished
		that.Turn = EmptyCell
	// tie
	case Draw:
		that.Winner = PlayerTie
		that.WinLine = nil
		that.Status = StatusFinished
		that.Turn = EmptyCell
	// game continue
	case Ongoing:
		that.Winner = EmptyCell
		that.WinLine = nil
		that.Status = StatusOngoing
		that.Turn = that.Board.NextTurn()
	}

	return outcome
}

// Reset - clears the board and the live move log for a new match. LastMatch is kept.
func (that *Game) Reset() {
	that.Board = Board{}
	that.Moves = []Move{}
	that.Winner = EmptyCell
	that.WinLine = nil
	that.Status = StatusOngoing
	that.Turn = PlayerX
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWithBot() bool {
	return that.Mode == WithBotMode
}

// BotMark - mark played by the engine, empty for two human players.
func (that *Game) BotMark() Mark {
	if !that.IsWithBot() {
		return EmptyCell
	}

	return that.HumanMark.Opponent()
}

// IsBotTurn - whether the engine must move next.
func (that *Game) IsBotTurn() bool {
	return that.IsWithBot() && that.IsOngoing() && that.Turn == that.BotMark()
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrGameFinished, that.Status)
	}
}

// ParseHumanMark - side requested by the human player. Empty means X.
func ParseHumanMark(value string) (Mark, error) {
	switch value {
	case "":
		return PlayerX, nil
	case RandomSide:
		human, _ := GetRandomMarks()
		return human, nil
	default:
		return ParseMark(value)
	}
}

func GetRandomMarks() (Mark, Mark) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
