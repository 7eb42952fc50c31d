package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	shutdownTimeout = 5 * time.Second
	writeWait       = 10 * time.Second
	maxMessageSize  = 4 << 10
	sendBuffer      = 16

	// a peer that sends neither a message nor a pong within pongWait is dropped;
	// pings go out often enough to keep a live peer inside that window
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

type gameManager interface {
	NewGame(ctx context.Context, mode string, difficulty entity.Difficulty, humanMark entity.Mark) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, gameID string) (*entity.Game, error)
	Replay(ctx context.Context, gameID string, k int, lastMatch bool) (entity.Board, error)
}

type handlerFunc func(ctx context.Context, msg *Message, sess *session) error

type Server struct {
	logger *slog.Logger

	games             gameManager
	defaultDifficulty entity.Difficulty
	upgrader          websocket.Upgrader

	pingInterval time.Duration
	pongWait     time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameManager, defaultDifficulty entity.Difficulty) *Server {
	server := &Server{
		logger:            logger.With("component", "websocket"),
		games:             games,
		defaultDifficulty: defaultDifficulty,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		pingInterval: pingInterval,
		pongWait:     pongWait,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionRestart] = server.handleRestart
	server.handlers[actionReplay] = server.handleReplay

	return server
}

// Handler - the /ws endpoint. Each connection lives until the client leaves or ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConn(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
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

func (that *Server) serveConn(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConn")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := newSession(conn, that.pingInterval)
	defer sess.close()

	go func() {
		if err := sess.writeLoop(ctx); err != nil {
			log.Debug("writer stopped", "error", err)
		}
		cancel()
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(ctx, sess); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// handleMessages - reads client messages until the connection fails.
func (that *Server) handleMessages(ctx context.Context, sess *session) error {
	log := that.logger.With("method", "handleMessages")

	sess.conn.SetReadLimit(maxMessageSize)

	if err := that.extendReadDeadline(sess); err != nil {
		return err
	}

	sess.conn.SetPongHandler(func(string) error {
		return that.extendReadDeadline(sess)
	})

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		if err = that.extendReadDeadline(sess); err != nil {
			return err
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = sess.sendError(actionError, "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			if err = sess.sendError(msg.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &msg, sess); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
		}
	}
}

func (that *Server) extendReadDeadline(sess *session) error {
	if err := sess.conn.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	return nil
}
