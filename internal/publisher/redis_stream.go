package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CompletedMatchesStream receives every saved match.
const CompletedMatchesStream = "matches.completed"

// streamMaxLen caps the stream length (approximate trimming).
const streamMaxLen = 1000

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishCompletedMatch publishes a saved match to the completed matches stream
func (p *RedisStreamPublisher) PublishCompletedMatch(ctx context.Context, matchID string, match interface{}) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: CompletedMatchesStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":        matchID,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
