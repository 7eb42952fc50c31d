package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/replay"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

func newSelector(seed int64) *tictactoe.Selector {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tictactoe.NewSelector(logger, tictactoe.NewLockedRand(seed), nil, 0)
}

func TestMatchPlay(t *testing.T) {
	t.Run("Hard against Hard is a draw", func(t *testing.T) {
		m := newMatch(newSelector(1), entity.Hard, entity.Hard)

		board, outcome, err := m.play(context.Background())

		require.NoError(t, err)
		assert.Equal(t, entity.Draw, outcome.Kind)
		assert.Equal(t, entity.BoardSize, board.Filled())
	})

	t.Run("Log replays to the final board", func(t *testing.T) {
		// Given: a finished Easy game
		m := newMatch(newSelector(7), entity.Easy, entity.Easy)

		// When: playing it
		board, outcome, err := m.play(context.Background())

		// Then: the history rebuilds the same board
		require.NoError(t, err)
		assert.True(t, outcome.IsTerminal())
		assert.Equal(t, board.Filled(), m.log.Len())

		replayed, err := replay.Reconstruct(m.log.Moves(), m.log.Len())
		require.NoError(t, err)
		assert.Equal(t, board, replayed)
	})

	t.Run("Each game starts from scratch", func(t *testing.T) {
		m := newMatch(newSelector(3), entity.Easy, entity.Normal)

		for range 5 {
			board, _, err := m.play(context.Background())
			require.NoError(t, err)
			assert.Equal(t, board.Filled(), m.log.Len())
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("Prints games and summary", func(t *testing.T) {
		var buf bytes.Buffer

		err := run(&buf, "hard", "hard", 2, 1, false, false)

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "game 1")
		assert.Contains(t, out, "game 2")
		assert.Contains(t, out, "draws 2")
	})

	t.Run("Quiet prints only the summary", func(t *testing.T) {
		var buf bytes.Buffer

		err := run(&buf, "easy", "easy", 3, 1, true, false)

		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	})

	t.Run("Rejects unknown difficulty", func(t *testing.T) {
		err := run(io.Discard, "brutal", "hard", 1, 1, true, false)

		require.ErrorIs(t, err, apperror.ErrUnknownDifficulty)
	})
}
