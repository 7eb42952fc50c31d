// Command selfplay pits two engine difficulties against each other and prints every game.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

func main() {
	var (
		xLevel = flag.String("x", "hard", "difficulty playing X")
		oLevel = flag.String("o", "normal", "difficulty playing O")
		games  = flag.Int("games", 10, "number of games")
		seed   = flag.Int64("seed", 0, "random seed, 0 uses the clock")
		quiet  = flag.Bool("quiet", false, "print only the summary")
		debug  = flag.Bool("debug", false, "log engine decisions to stderr")
	)
	flag.Parse()

	if err := run(os.Stdout, *xLevel, *oLevel, *games, *seed, *quiet, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "selfplay: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, xLevel, oLevel string, games int, seed int64, quiet, debug bool) error {
	x, err := entity.ParseDifficulty(xLevel)
	if err != nil {
		return fmt.Errorf("invalid -x: %w", err)
	}

	o, err := entity.ParseDifficulty(oLevel)
	if err != nil {
		return fmt.Errorf("invalid -o: %w", err)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	selector := tictactoe.NewSelector(logger, tictactoe.NewLockedRand(seed), nil, 0)
	m := newMatch(selector, x, o)
	r := newRenderer(w)

	var score entity.Score
	for i := 1; i <= games; i++ {
		board, outcome, err := m.play(context.Background())
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}

		score.Tally(outcome)

		if !quiet {
			fmt.Fprintf(w, "game %d, %d moves: %s\n", i, m.log.Len(), r.outcome(outcome))
			fmt.Fprintln(w, r.board(board, outcome.Line, outcome.Kind == entity.Won))
		}
	}

	fmt.Fprint(w, r.summary(score, x, o))

	return nil
}
