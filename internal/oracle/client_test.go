package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the suggested cell", func(t *testing.T) {
		// Given: an oracle that answers with cell 4
		var received suggestRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"move": 4}`))
		}))
		defer srv.Close()

		client := New(srv.URL, srv.Client())
		board := entity.Board{entity.PlayerX}

		// When: asking for a suggestion
		cell, err := client.Suggest(ctx, board, entity.PlayerO)

		// Then: the cell is returned and the board was sent
		require.NoError(t, err)
		assert.Equal(t, 4, cell)
		assert.Equal(t, board, received.Board)
		assert.Equal(t, entity.PlayerO, received.Mark)
	})

	t.Run("Out of range values are passed through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"move": 12}`))
		}))
		defer srv.Close()

		cell, err := New(srv.URL, srv.Client()).Suggest(ctx, entity.Board{}, entity.PlayerX)

		require.NoError(t, err)
		assert.Equal(t, 12, cell)
	})

	t.Run("Negative move means no suggestion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"move": -1}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, srv.Client()).Suggest(ctx, entity.Board{}, entity.PlayerX)

		assert.ErrorIs(t, err, ErrNoSuggestion)
	})

	t.Run("Missing move means no suggestion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, srv.Client()).Suggest(ctx, entity.Board{}, entity.PlayerX)

		assert.ErrorIs(t, err, ErrNoSuggestion)
	})

	t.Run("Non OK status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := New(srv.URL, srv.Client()).Suggest(ctx, entity.Board{}, entity.PlayerX)

		assert.ErrorIs(t, err, ErrBadStatus)
	})

	t.Run("Garbage body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`the best move is the center`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, srv.Client()).Suggest(ctx, entity.Board{}, entity.PlayerX)

		assert.Error(t, err)
	})

	t.Run("Honors the context deadline", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
			_, _ = w.Write([]byte(`{"move": 4}`))
		}))
		defer srv.Close()
		defer close(release)

		deadlineCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := New(srv.URL, srv.Client()).Suggest(deadlineCtx, entity.Board{}, entity.PlayerX)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
