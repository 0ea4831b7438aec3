package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher sends each event as JSON on the channel <prefix><game id>.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	if strings.TrimSpace(prefix) == "" {
		prefix = "chess:game:"
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the pub/sub channel for gameID.
func (p *RedisPublisher) Channel(gameID string) string {
	return p.prefix + strings.TrimSpace(gameID)
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(ev.GameID), raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
