package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultSessionTTL bounds how long a session's ledger survives without writes.
const DefaultSessionTTL = 30 * time.Minute

// Redis is a session-scoped Ledger backed by Redis lists.
type Redis struct {
	redis   *redis.Client
	session string
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewRedis creates a ledger for one session. A non-positive ttl selects
// DefaultSessionTTL.
func NewRedis(redisClient *redis.Client, session string, ttl time.Duration, logger zerolog.Logger) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Redis{
		redis:   redisClient,
		session: session,
		ttl:     ttl,
		logger:  logger,
	}
}

// IsLoaded implements Ledger.
func (r *Redis) IsLoaded(ctx context.Context, query, page int) (bool, error) {
	key := Key{Session: r.session, Query: query}.String()

	_, err := r.redis.LPos(ctx, key, strconv.Itoa(page), redis.LPosArgs{}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		ledgerErrors.WithLabelValues("is_loaded").Inc()
		return false, fmt.Errorf("redis lpos: %w", err)
	}

	ledgerHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Record implements Ledger. The session TTL is refreshed on every write.
func (r *Redis) Record(ctx context.Context, query, page int) error {
	key := Key{Session: r.session, Query: query}.String()

	pipe := r.redis.TxPipeline()
	pipe.RPush(ctx, key, strconv.Itoa(page))
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		ledgerErrors.WithLabelValues("record").Inc()
		return fmt.Errorf("redis rpush: %w", err)
	}

	ledgerRecords.WithLabelValues("redis").Inc()
	r.logger.Debug().
		Str("key", key).
		Int("page", page).
		Dur("ttl", r.ttl).
		Msg("Recorded page")

	return nil
}

// Reset implements Ledger by deleting every key of the session.
func (r *Redis) Reset(ctx context.Context) error {
	pattern := SessionPattern(r.session)

	var deleted int64
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.redis.Del(ctx, iter.Val()).Result()
		if err != nil {
			ledgerErrors.WithLabelValues("reset").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		ledgerErrors.WithLabelValues("reset").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}

	r.logger.Debug().
		Str("session", r.session).
		Int64("keys", deleted).
		Msg("Ledger reset")

	return nil
}
