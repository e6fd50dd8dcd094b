package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vish-intecai/translateo-server/internal/app"
)

// TranscriptEvent mirrors the transcript:received payload for consumers
// outside the websocket fanout, e.g. a translation pipeline tailing the
// channel.
type TranscriptEvent struct {
	RoomID         string `json:"roomId"`
	UserID         string `json:"userId"`
	Text           string `json:"text"`
	SpokenLanguage string `json:"spokenLanguage"`
	Timestamp      int64  `json:"timestamp"`
}

// TranscriptBus publishes accepted final transcripts to Redis. It is
// publish-only: room state and event fanout never leave the process.
type TranscriptBus struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewTranscriptBus connects to redis and verifies connectivity.
func NewTranscriptBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*TranscriptBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &TranscriptBus{rdb: rdb, log: log}, nil
}

// Publish sends the transcript to the room's channel. A nil bus is a no-op,
// so callers don't branch on whether Redis is configured.
func (b *TranscriptBus) Publish(ctx context.Context, ev TranscriptEvent) {
	if b == nil {
		return
	}
	raw, _ := json.Marshal(ev)
	if err := b.rdb.Publish(ctx, channel(ev.RoomID), raw).Err(); err != nil {
		b.log.Warn("bus.publish", "room", ev.RoomID, "err", err)
	}
}

// Close shuts down the redis connection.
func (b *TranscriptBus) Close() {
	if b != nil {
		_ = b.rdb.Close()
	}
}

// channel namespacing for transcript pub/sub
func channel(roomID string) string { return "transcripts:" + roomID }
