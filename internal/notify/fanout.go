package notify

import (
	"context"

	"go.uber.org/zap"
)

// Fanout publishes to every configured destination. Delivery failures are logged and never
// returned, so a dead webhook cannot fail a move that the store already committed.
type Fanout struct {
	pubs   []Publisher
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger, pubs ...Publisher) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Fanout{pubs: out, logger: logger}
}

// Len reports how many destinations are configured.
func (f *Fanout) Len() int { return len(f.pubs) }

func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	for _, p := range f.pubs {
		if err := p.Publish(ctx, ev); err != nil {
			f.logger.Warn("notify_error",
				zap.String("game_id", ev.GameID),
				zap.String("kind", string(ev.Kind)),
				zap.String("publisher", publisherName(p)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func publisherName(p Publisher) string {
	switch p.(type) {
	case *RedisPublisher:
		return "redis"
	case *WebhookPublisher:
		return "webhook"
	case *WSPublisher:
		return "ws"
	default:
		return "other"
	}
}
