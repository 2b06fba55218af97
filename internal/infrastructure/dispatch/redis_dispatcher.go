package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
)

// jobEnvelope is the wire format pushed onto the worker queues. The snapshot
// carries the record as it looked when the processing flag was acquired, so a
// worker never has to re-read state it might race with.
type jobEnvelope struct {
	Kind       domain.JobKind    `json:"kind"`
	Project    *domain.Project   `json:"project"`
	Params     domain.JobParams  `json:"params"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// RedisDispatcher submits jobs by pushing envelopes onto per-kind Redis lists.
// Workers consume with BRPOP and release the processing flag through the
// repository when done.
type RedisDispatcher struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

func NewRedisDispatcher(cfg *config.Config, log zerolog.Logger) (*RedisDispatcher, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisDispatcher{
		client: redis.NewClient(opts),
		prefix: cfg.JobQueuePrefix,
		log:    log.With().Str("component", "redis-dispatcher").Logger(),
	}, nil
}

func (d *RedisDispatcher) Submit(ctx context.Context, kind domain.JobKind, snapshot *domain.Project, params domain.JobParams) error {
	envelope := jobEnvelope{
		Kind:       kind,
		Project:    snapshot,
		Params:     params,
		EnqueuedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal job envelope: %w", err)
	}

	queue := fmt.Sprintf("%s:%s", d.prefix, kind)
	if err := d.client.LPush(ctx, queue, payload).Err(); err != nil {
		return fmt.Errorf("push job to %s: %w", queue, err)
	}

	d.log.Debug().Str("queue", queue).Str("project_id", snapshot.ID).Msg("job enqueued")
	return nil
}

// Health pings the Redis backend.
func (d *RedisDispatcher) Health(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}
