package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const scoresKey = "scores"

var ErrUnscorable = errors.New("outcome cannot be scored")

type ScoreRepository interface {
	Add(ctx context.Context, outcome entity.Outcome) error
	Get(ctx context.Context) (entity.Score, error)
}

type dbScore struct {
	client *redis.Client
}

type scoreHash struct {
	X     int `redis:"x"`
	O     int `redis:"o"`
	Draws int `redis:"draws"`
}

// NewScoreRepository - aggregate results of every finished game, kept in one Redis hash.
func NewScoreRepository(client *redis.Client) ScoreRepository {
	return &dbScore{
		client: client,
	}
}

func (that *dbScore) Add(ctx context.Context, outcome entity.Outcome) error {
	var field string

	switch outcome.Kind {
	case entity.Won:
		switch outcome.Winner {
		case entity.PlayerX:
			field = "x"
		case entity.PlayerO:
			field = "o"
		default:
			return fmt.Errorf("%w: winner %q", ErrUnscorable, outcome.Winner)
		}
	case entity.Draw:
		field = "draws"
	case entity.Ongoing:
		return fmt.Errorf("%w: game is ongoing", ErrUnscorable)
	}

	if err := that.client.HIncrBy(ctx, scoresKey, field, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment score: %w", err)
	}

	return nil
}

func (that *dbScore) Get(ctx context.Context) (entity.Score, error) {
	var hash scoreHash
	if err := that.client.HGetAll(ctx, scoresKey).Scan(&hash); err != nil {
		return entity.Score{}, fmt.Errorf("failed to get scores: %w", err)
	}

	return entity.Score{X: hash.X, O: hash.O, Draws: hash.Draws}, nil
}
