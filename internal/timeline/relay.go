package timeline

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/models"
)

// Loader fetches the current ordered record list for a snapshot
type Loader func(ctx context.Context) ([]models.Recommendation, error)

// Relay subscribes to the new-record pub/sub channel and re-broadcasts the
// current timeline to local subscribers on every event. This is what turns
// a store write on any instance into a push on every instance.
type Relay struct {
	redis   *redis.Client
	channel string
	hub     *Hub
	load    Loader
	logger  *zap.Logger
}

// NewRelay creates a new Relay
func NewRelay(redisClient *redis.Client, channel string, hub *Hub, load Loader, logger *zap.Logger) *Relay {
	return &Relay{
		redis:   redisClient,
		channel: channel,
		hub:     hub,
		load:    load,
		logger:  logger,
	}
}

// Run consumes record events until the context is canceled
func (r *Relay) Run(ctx context.Context) error {
	sub := r.redis.Subscribe(ctx, r.channel)
	defer sub.Close()

	events := sub.Channel()
	r.logger.Info("timeline relay subscribed", zap.String("channel", r.channel))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-events:
			if !ok {
				return nil
			}

			records, err := r.load(ctx)
			if err != nil {
				r.logger.Error("failed to load timeline after record event",
					zap.String("record_id", msg.Payload),
					zap.Error(err),
				)
				continue
			}
			r.hub.BroadcastTimeline(records)
		}
	}
}
