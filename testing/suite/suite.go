package suite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	startupTimeout = 90 * time.Second
	containerTTL   = uint(180)

	redisImage = "redis"
	redisTag   = "7-alpine"
	redisPort  = "6379/tcp"
)

// ScoresKey - the hash the score repository keeps its counters in.
const ScoresKey = "scores"

// Suite - a fresh Redis for one test plus helpers for the keys the engine writes.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

// New - starts Redis in a throwaway container. Skipped under -short.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("redis container needed, skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	client, err := startRedis(ctx, t)
	if err != nil {
		t.Fatalf("failed to start redis: %v", err)
	}

	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	return ctx, &Suite{
		T:       t,
		Storage: client,
	}
}

// SeedScores - overwrites the score counters, as if the games had already been played.
func (that *Suite) SeedScores(ctx context.Context, x, o, draws int) {
	that.Helper()

	if err := that.Storage.HSet(ctx, ScoresKey, "x", x, "o", o, "draws", draws).Err(); err != nil {
		that.Fatalf("failed to seed scores: %v", err)
	}
}

// RawScores - the score hash exactly as stored.
func (that *Suite) RawScores(ctx context.Context) map[string]string {
	that.Helper()

	fields, err := that.Storage.HGetAll(ctx, ScoresKey).Result()
	if err != nil {
		that.Fatalf("failed to read scores: %v", err)
	}

	return fields
}

// ClearScores - drops the score hash and leaves game sessions alone.
func (that *Suite) ClearScores(ctx context.Context) {
	that.Helper()

	if err := that.Storage.Del(ctx, ScoresKey).Err(); err != nil {
		that.Fatalf("failed to clear scores: %v", err)
	}
}

func startRedis(ctx context.Context, t *testing.T) (*redis.Client, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker: %w", err)
	}

	pool.MaxWait = startupTimeout

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run container: %w", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("failed to purge redis container: %v", err)
		}
	})

	// hard kill if the test binary dies before cleanup runs
	_ = resource.Expire(containerTTL)

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
	t.Cleanup(func() { _ = client.Close() })

	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		return nil, fmt.Errorf("redis never answered ping: %w", err)
	}

	return client, nil
}
