package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errSessionClosed = errors.New("session closed")

// session - one client connection. Reads happen on the serving goroutine, every write
// goes through send so gorilla's single-writer rule holds.
type session struct {
	conn *websocket.Conn
	send chan []byte

	pingInterval time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, pingInterval time.Duration) *session {
	return &session{
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		pingInterval: pingInterval,
		done:         make(chan struct{}),
	}
}

func (that *session) sendMessage(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	select {
	case that.send <- data:
		return nil
	case <-that.done:
		return errSessionClosed
	}
}

func (that *session) sendError(action, errorMsg string) error {
	if err := that.sendMessage(action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// writeLoop - drains send and pings the client every pingInterval. The pongs keep
// the reader's deadline moving.
func (that *session) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(that.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return that.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		case <-that.done:
			return nil
		case data := <-that.send:
			if err := that.write(websocket.TextMessage, data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (that *session) write(messageType int, data []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *session) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}
