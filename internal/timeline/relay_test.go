package timeline

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/backend/internal/models"
)

func TestRelayBroadcastsOnRecordEvent(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port)})
	t.Cleanup(func() { _ = client.Close() })

	hub := startHub(t)
	subscriber := newTestSubscriber(hub, 16)
	hub.register <- subscriber
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	records := []models.Recommendation{{ID: uuid.New(), City: "lisbon", Country: "portugal"}}
	channel := "recommendations:test:" + uuid.New().String()
	relay := NewRelay(client, channel, hub, func(ctx context.Context) ([]models.Recommendation, error) {
		return records, nil
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = relay.Run(ctx) }()

	// Give the subscription a moment to establish before publishing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, client.Publish(context.Background(), channel, records[0].ID.String()).Err())

	select {
	case msg := <-subscriber.send:
		assert.Equal(t, MessageTypeTimeline, msg.Type)
		snapshot, ok := msg.Data.(Snapshot)
		require.True(t, ok)
		require.Len(t, snapshot.Records, 1)
		assert.Equal(t, "Lisbon", snapshot.Records[0].City)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed snapshot")
	}
}
