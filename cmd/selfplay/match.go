package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/replay"
)

type moveSelector interface {
	SelectMove(ctx context.Context, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

// match - one engine-vs-engine game. players maps each mark to its difficulty.
type match struct {
	selector moveSelector
	players  map[entity.Mark]entity.Difficulty
	log      *replay.Log
}

func newMatch(selector moveSelector, x, o entity.Difficulty) *match {
	return &match{
		selector: selector,
		players:  map[entity.Mark]entity.Difficulty{entity.PlayerX: x, entity.PlayerO: o},
		log:      replay.NewLog(),
	}
}

// play - alternates moves from an empty board until the game is decided.
func (that *match) play(ctx context.Context) (entity.Board, entity.Outcome, error) {
	that.log.StartNewGame()

	var board entity.Board
	outcome := entity.Evaluate(board)

	for !outcome.IsTerminal() {
		mark := board.NextTurn()

		cell, err := that.selector.SelectMove(ctx, board, mark, that.players[mark])
		if err != nil {
			return board, outcome, fmt.Errorf("failed to select move for %s: %w", mark, err)
		}

		if board, err = that.log.Record(board, entity.NewMove(cell, mark)); err != nil {
			return board, outcome, fmt.Errorf("failed to record move: %w", err)
		}

		outcome = entity.Evaluate(board)
	}

	return board, outcome, nil
}

type renderer struct {
	out *termenv.Output
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{out: termenv.NewOutput(w)}
}

func (that *renderer) board(board entity.Board, highlight entity.Line, hasLine bool) string {
	winning := make(map[int]bool, len(highlight))
	if hasLine {
		for _, cell := range highlight {
			winning[cell] = true
		}
	}

	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}

		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}

			cell := row*3 + col
			sb.WriteString(" " + that.cell(board[cell], winning[cell]) + " ")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func (that *renderer) cell(mark entity.Mark, winning bool) string {
	var style termenv.Style

	switch mark {
	case entity.PlayerX:
		style = that.out.String("X").Foreground(that.out.Color("#E06C75"))
	case entity.PlayerO:
		style = that.out.String("O").Foreground(that.out.Color("#61AFEF"))
	default:
		return that.out.String(".").Faint().String()
	}

	if winning {
		style = style.Bold().Underline()
	}

	return style.String()
}

func (that *renderer) outcome(outcome entity.Outcome) string {
	switch outcome.Kind {
	case entity.Won:
		return that.out.String(fmt.Sprintf("%s wins", outcome.Winner)).Bold().String()
	case entity.Draw:
		return that.out.String("draw").Italic().String()
	case entity.Ongoing:
	}

	return outcome.Kind.String()
}

func (that *renderer) summary(score entity.Score, x, o entity.Difficulty) string {
	return fmt.Sprintf("%s: X (%s) %d, O (%s) %d, draws %d\n",
		that.out.String("summary").Bold(), x, score.X, o, score.O, score.Draws)
}
