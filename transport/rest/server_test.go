package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type mockGames struct {
	mock.Mock
}

func (that *mockGames) NewGame(ctx context.Context, mode string, difficulty entity.Difficulty, humanMark entity.Mark) (*entity.Game, error) {
	args := that.Called(ctx, mode, difficulty, humanMark)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error) {
	args := that.Called(ctx, gameID, cell)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) Restart(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGames) Replay(ctx context.Context, gameID string, k int, lastMatch bool) (entity.Board, error) {
	args := that.Called(ctx, gameID, k, lastMatch)
	return args.Get(0).(entity.Board), args.Error(1)
}

func (that *mockGames) Scores(ctx context.Context) (entity.Score, error) {
	args := that.Called(ctx)
	return args.Get(0).(entity.Score), args.Error(1)
}

func (that *mockGames) DeleteGame(ctx context.Context, gameID string) error {
	return that.Called(ctx, gameID).Error(0)
}

type fixedOracle int

func (that fixedOracle) Suggest(context.Context, entity.Board, entity.Mark) (int, error) {
	return int(that), nil
}

func newTestServer(t *testing.T, oracle tictactoe.Oracle) (http.Handler, *mockGames) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := &mockGames{}
	t.Cleanup(func() { games.AssertExpectations(t) })

	selector := tictactoe.NewSelector(logger, tictactoe.NewLockedRand(1), oracle, time.Second)

	return New(logger, selector, games, entity.Hard).Router(), games
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestPing(t *testing.T) {
	handler, _ := newTestServer(t, nil)

	rec := do(t, handler, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestDecide(t *testing.T) {
	t.Run("Hard takes the winning cell", func(t *testing.T) {
		// Given: X can finish the top row
		handler, _ := newTestServer(t, nil)
		body := `{"board":["X","X","","O","O","","","",""],"mark":"X","difficulty":"hard"}`

		// When: asking for a move
		rec := do(t, handler, http.MethodPost, "/decide", body)

		// Then: cell 2 is returned
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[decideResponse](t, rec).Cell)
	})

	t.Run("Default difficulty consults the oracle", func(t *testing.T) {
		// Given: an oracle suggesting a legal cell
		handler, _ := newTestServer(t, fixedOracle(8))

		// When: deciding on an empty board without a difficulty
		rec := do(t, handler, http.MethodPost, "/decide", `{"board":["","","","","","","","",""],"mark":"X"}`)

		// Then: the suggestion is used
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 8, decode[decideResponse](t, rec).Cell)
	})

	t.Run("Inline suggestion replaces the oracle", func(t *testing.T) {
		handler, _ := newTestServer(t, fixedOracle(8))

		rec := do(t, handler, http.MethodPost, "/decide",
			`{"board":["","","","","","","","",""],"mark":"X","suggestion":6}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 6, decode[decideResponse](t, rec).Cell)
	})

	t.Run("Rejects malformed input", func(t *testing.T) {
		handler, _ := newTestServer(t, nil)

		for name, tc := range map[string]struct {
			body   string
			status int
		}{
			"not json":         {body: `{`, status: http.StatusBadRequest},
			"unknown field":    {body: `{"board":["","","","","","","","",""],"mark":"X","extra":1}`, status: http.StatusBadRequest},
			"one cell board":   {body: `{"board":["X"],"mark":"O","difficulty":"hard"}`, status: http.StatusBadRequest},
			"eight cell board": {body: `{"board":["X","","","","","","",""],"mark":"O"}`, status: http.StatusBadRequest},
			"ten cell board":   {body: `{"board":["X","","","","","","","","","O"],"mark":"X"}`, status: http.StatusBadRequest},
			"long board":       {body: `{"board":["X","","","","","","","","","O","X","O"],"mark":"O"}`, status: http.StatusBadRequest},
			"bad mark":         {body: `{"board":["","","","","","","","",""],"mark":"Z"}`, status: http.StatusUnprocessableEntity},
			"bad difficulty":   {body: `{"board":["","","","","","","","",""],"mark":"X","difficulty":"insane"}`, status: http.StatusUnprocessableEntity},
			"unbalanced board": {body: `{"board":["X","X","","","","","","",""],"mark":"O"}`, status: http.StatusUnprocessableEntity},
			"finished board":   {body: `{"board":["X","X","X","O","O","","","",""],"mark":"O"}`, status: http.StatusUnprocessableEntity},
		} {
			t.Run(name, func(t *testing.T) {
				rec := do(t, handler, http.MethodPost, "/decide", tc.body)

				assert.Equal(t, tc.status, rec.Code)
				assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
			})
		}
	})
}

func TestReplay(t *testing.T) {
	moves := `[{"cell":4,"mark":"X"},{"cell":0,"mark":"O"},{"cell":8,"mark":"X"}]`

	t.Run("Board after k moves", func(t *testing.T) {
		handler, _ := newTestServer(t, nil)

		rec := do(t, handler, http.MethodPost, "/replay", `{"moves":`+moves+`,"k":2}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[replayResponse](t, rec)
		require.NotNil(t, resp.Board)
		assert.Equal(t, entity.Board{"O", "", "", "", "X", "", "", "", ""}, *resp.Board)
	})

	t.Run("Full timeline without k", func(t *testing.T) {
		handler, _ := newTestServer(t, nil)

		rec := do(t, handler, http.MethodPost, "/replay", `{"moves":`+moves+`}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[replayResponse](t, rec)
		require.Len(t, resp.Timeline, 4)
		assert.Equal(t, entity.Board{}, resp.Timeline[0])
		assert.Equal(t, entity.PlayerX, resp.Timeline[3][8])
	})

	t.Run("Index out of range", func(t *testing.T) {
		handler, _ := newTestServer(t, nil)

		rec := do(t, handler, http.MethodPost, "/replay", `{"moves":`+moves+`,"k":4}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGames(t *testing.T) {
	game, err := entity.NewGame("g1", entity.WithBotMode, entity.Normal, entity.PlayerX)
	require.NoError(t, err)

	t.Run("Create uses defaults", func(t *testing.T) {
		// Given: an empty create request
		handler, games := newTestServer(t, nil)
		games.On("NewGame", mock.Anything, entity.WithBotMode, entity.Hard, entity.PlayerX).Return(game, nil)

		// When: posting it
		rec := do(t, handler, http.MethodPost, "/games", `{}`)

		// Then: the game is created with server defaults
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "g1", decode[entity.Game](t, rec).ID)
	})

	t.Run("Create with explicit options", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("NewGame", mock.Anything, entity.PrivateMode, entity.Easy, entity.PlayerO).Return(game, nil)

		rec := do(t, handler, http.MethodPost, "/games", `{"mode":"pvp","difficulty":"easy","human_mark":"O"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Get unknown game", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("GetGame", mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound)

		rec := do(t, handler, http.MethodGet, "/games/nope", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Turn on an occupied cell conflicts", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("MakeTurn", mock.Anything, "g1", 4).Return(nil, apperror.ErrCellOccupied)

		rec := do(t, handler, http.MethodPost, "/games/g1/turn", `{"cell":4}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Turn without a cell is rejected", func(t *testing.T) {
		// Given: a turn request that names no cell
		handler, _ := newTestServer(t, nil)

		// When: posting it
		rec := do(t, handler, http.MethodPost, "/games/g1/turn", `{}`)

		// Then: nothing is played
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "cell is required")
	})

	t.Run("Turn returns the updated game", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("MakeTurn", mock.Anything, "g1", 0).Return(game, nil)

		rec := do(t, handler, http.MethodPost, "/games/g1/turn", `{"cell":0}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Restart", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("Restart", mock.Anything, "g1").Return(game, nil)

		rec := do(t, handler, http.MethodPost, "/games/g1/restart", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Replay of the last match", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		board := entity.Board{"X"}
		games.On("Replay", mock.Anything, "g1", 1, true).Return(board, nil)

		rec := do(t, handler, http.MethodGet, "/games/g1/replay/1?match=last", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, board, *decode[replayResponse](t, rec).Board)
	})

	t.Run("Replay with a non-numeric index", func(t *testing.T) {
		handler, _ := newTestServer(t, nil)

		rec := do(t, handler, http.MethodGet, "/games/g1/replay/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("DeleteGame", mock.Anything, "g1").Return(nil)

		rec := do(t, handler, http.MethodDelete, "/games/g1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Storage failure hides details", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("Scores", mock.Anything).Return(entity.Score{}, errors.New("redis down"))

		rec := do(t, handler, http.MethodGet, "/scores", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), decode[errorResponse](t, rec).Error)
	})

	t.Run("Scores", func(t *testing.T) {
		handler, games := newTestServer(t, nil)
		games.On("Scores", mock.Anything).Return(entity.Score{X: 2, O: 1, Draws: 3}, nil)

		rec := do(t, handler, http.MethodGet, "/scores", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, entity.Score{X: 2, O: 1, Draws: 3}, decode[entity.Score](t, rec))
	})
}
