// Package oracle asks an external move suggester over HTTP. Suggestions are hints only,
// the selector validates them before use.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var (
	ErrNoSuggestion = errors.New("oracle returned no suggestion")
	ErrBadStatus    = errors.New("oracle returned unexpected status")
)

const maxResponseSize = 4 << 10

type suggestRequest struct {
	Board entity.Board `json:"board"`
	Mark  entity.Mark  `json:"mark"`
}

type suggestResponse struct {
	Move *int `json:"move"`
}

type Client struct {
	url        string
	httpClient *http.Client
}

func New(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		url:        url,
		httpClient: httpClient,
	}
}

// Suggest - posts the board and returns the suggested cell. The value is not checked
// against the board here.
func (that *Client) Suggest(ctx context.Context, board entity.Board, mark entity.Mark) (int, error) {
	body, err := json.Marshal(suggestRequest{Board: board, Mark: mark})
	if err != nil {
		return -1, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.url, bytes.NewReader(body))
	if err != nil {
		return -1, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return -1, fmt.Errorf("failed to call oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return -1, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var payload suggestResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return -1, fmt.Errorf("failed to decode response: %w", err)
	}

	// -1 is how the oracle says it has nothing
	if payload.Move == nil || *payload.Move < 0 {
		return -1, ErrNoSuggestion
	}

	return *payload.Move, nil
}
