package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Envelope is the typed job payload pushed through Redis.
type Envelope struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	UserID   string                 `json:"user_id"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Attempt  int                    `json:"attempt"`
	Enqueued time.Time              `json:"enqueued"`
}

// Handler processes a job envelope.
type Handler func(context.Context, Envelope) error

// Config configures worker pool behaviour.
type Config struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// redisList is the slice of the Redis client the queue needs.
type redisList interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue is a Redis-list backed job dispatcher. Producers enqueue fire-and-forget;
// a pool of workers consumes with BRPOP. Failed jobs are re-enqueued with
// exponential backoff until MaxRetries is exhausted.
type Queue struct {
	name    string
	key     string
	client  redisList
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue bound to the given Redis client and handler.
func NewQueue(name string, client redisList, handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		key:        fmt.Sprintf("queue:%s", name),
		client:     client,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Enqueue pushes a job envelope. It never blocks on consumers; Redis holds the
// backlog, so producing before Start is valid.
func (q *Queue) Enqueue(ctx context.Context, env Envelope) (string, error) {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.Enqueued.IsZero() {
		env.Enqueued = time.Now().UTC()
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return env.ID, nil
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(q.ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			q.logger.Sugar().Warnw("queue pop failed", "queue", q.name, "error", err)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			q.logger.Sugar().Errorw("malformed job discarded", "queue", q.name, "error", err)
			continue
		}

		if err := q.handler(q.ctx, env); err != nil {
			q.handleFailure(env, err)
		}
	}
}

func (q *Queue) handleFailure(env Envelope, err error) {
	env.Attempt++
	if env.Attempt > q.maxRetries {
		q.logger.Sugar().Errorw("job exceeded retries", "queue", q.name, "job_id", env.ID, "type", env.Type, "error", err)
		return
	}

	delay := q.retryDelay << (env.Attempt - 1)
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", env.ID, "type", env.Type, "attempt", env.Attempt, "delay", delay, "error", err)

	q.wg.Add(1)
	go func(e Envelope) {
		defer q.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			// Flush the envelope back to Redis so the retry survives the
			// shutdown; Stop waits for this push before returning.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := q.Enqueue(ctx, e); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job on shutdown", "queue", q.name, "job_id", e.ID, "error", err)
			}
		case <-timer.C:
			if _, err := q.Enqueue(q.ctx, e); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", e.ID, "error", err)
			}
		}
	}(env)
}
