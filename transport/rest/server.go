package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type moveDecider interface {
	SelectMove(ctx context.Context, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
	Decide(board entity.Board, mark entity.Mark, difficulty entity.Difficulty, suggestion *int) (int, error)
}

type gameManager interface {
	NewGame(ctx context.Context, mode string, difficulty entity.Difficulty, humanMark entity.Mark) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, gameID string) (*entity.Game, error)
	Replay(ctx context.Context, gameID string, k int, lastMatch bool) (entity.Board, error)
	Scores(ctx context.Context) (entity.Score, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type Server struct {
	logger *slog.Logger

	decider           moveDecider
	games             gameManager
	defaultDifficulty entity.Difficulty
}

func New(logger *slog.Logger, decider moveDecider, games gameManager, defaultDifficulty entity.Difficulty) *Server {
	return &Server{
		logger:            logger.With("component", "rest"),
		decider:           decider,
		games:             games,
		defaultDifficulty: defaultDifficulty,
	}
}

// Router - wires routes and returns an http.Handler.
func (that *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", pingHandler)
	r.Post("/decide", that.handleDecide)
	r.Post("/replay", that.handleReplay)
	r.Get("/scores", that.handleScores)

	r.Post("/games", that.handleNewGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", that.handleGetGame)
		r.Delete("/", that.handleDeleteGame)
		r.Post("/turn", that.handleTurn)
		r.Post("/restart", that.handleRestart)
		r.Get("/replay/{k}", that.handleGameReplay)
	})

	return r
}

// Start - serves until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
