package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-workflow/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Every write bumps the recipient's generation (KEYS[2]) and the global
// generation (KEYS[3]) so a concurrent load from the database can tell its
// count may already be stale.

// incrIfPresentScript bumps a counter only when it is already cached. A missing
// key means the value is unknown; Get will load it from the database.
var incrIfPresentScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
	redis.call('INCR', KEYS[3])
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('INCRBY', KEYS[1], ARGV[1])
`)

// decrFloorScript decrements a cached counter without going below zero.
var decrFloorScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
	redis.call('INCR', KEYS[3])
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	local current = tonumber(redis.call('GET', KEYS[1]))
	local delta = tonumber(ARGV[1])
	if current - delta < 0 then
		delta = current
	end
	return redis.call('DECRBY', KEYS[1], delta)
`)

var resetScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[1])
	redis.call('INCR', KEYS[3])
	return redis.call('SET', KEYS[1], 0, 'PX', ARGV[1])
`)

// cacheLoadedScript stores a database count only if no write touched the
// recipient since the generation in ARGV[1] was read.
var cacheLoadedScript = redis.NewScript(`
	local gen = redis.call('GET', KEYS[2]) or '0'
	if gen ~= ARGV[1] then
		return 0
	end
	if redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3], 'NX') then
		return 1
	end
	return 0
`)

// syncBatchScript writes a batch of recomputed counters when the global
// generation still equals ARGV[1]. Otherwise the batch keys are dropped and
// load lazily through Get.
var syncBatchScript = redis.NewScript(`
	local gen = redis.call('GET', KEYS[1]) or '0'
	if gen ~= ARGV[1] then
		for i = 2, #KEYS do
			redis.call('DEL', KEYS[i])
		end
		return 0
	end
	for i = 2, #KEYS do
		redis.call('SET', KEYS[i], ARGV[i + 1], 'PX', ARGV[2])
	end
	return 1
`)

const (
	RedisUnreadKeyPrefix = "notifications:unread:"
	unreadGenKeyPrefix   = "notifications:unread_gen:"
	unreadGlobalGenKey   = "notifications:unread_gen"

	// Timeout for individual Redis operations
	redisOpTimeout = 5 * time.Second

	// Startup sync processes 500 recipients per pipeline
	syncBatchSize = 500

	// Cached counters expire so an abandoned mailbox does not live in Redis forever
	unreadCounterTTL = 7 * 24 * time.Hour
)

// UnreadCounter tracks the number of unread notifications per recipient.
type UnreadCounter interface {
	Incr(ctx context.Context, email string) error
	Decr(ctx context.Context, email string, by int64) error
	Reset(ctx context.Context, email string) error
	Get(ctx context.Context, email string) (int64, error)
}

// RedisUnreadCounter caches unread counts in Redis and falls back to the
// notifications table when a key is missing or Redis is unavailable.
type RedisUnreadCounter struct {
	notificationRepo repository.NotificationRepository
	redisClient      *redis.Client
	log              *logrus.Logger
}

func NewRedisUnreadCounter(notificationRepo repository.NotificationRepository, redisClient *redis.Client, log *logrus.Logger) *RedisUnreadCounter {
	return &RedisUnreadCounter{
		notificationRepo: notificationRepo,
		redisClient:      redisClient,
		log:              log,
	}
}

func unreadKey(email string) string {
	return RedisUnreadKeyPrefix + email
}

func unreadGenKey(email string) string {
	return unreadGenKeyPrefix + email
}

func (c *RedisUnreadCounter) writeKeys(email string) []string {
	return []string{unreadKey(email), unreadGenKey(email), unreadGlobalGenKey}
}

func (c *RedisUnreadCounter) Incr(ctx context.Context, email string) error {
	if err := incrIfPresentScript.Run(ctx, c.redisClient, c.writeKeys(email), 1, unreadCounterTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("incr unread for %s: %w", email, err)
	}
	return nil
}

func (c *RedisUnreadCounter) Decr(ctx context.Context, email string, by int64) error {
	if by <= 0 {
		return nil
	}
	if err := decrFloorScript.Run(ctx, c.redisClient, c.writeKeys(email), by, unreadCounterTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("decr unread for %s: %w", email, err)
	}
	return nil
}

func (c *RedisUnreadCounter) Reset(ctx context.Context, email string) error {
	if err := resetScript.Run(ctx, c.redisClient, c.writeKeys(email), unreadCounterTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("reset unread for %s: %w", email, err)
	}
	return nil
}

// readGeneration returns the value stored at key, "0" when it is missing.
func (c *RedisUnreadCounter) readGeneration(ctx context.Context, key string) (string, error) {
	gen, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// Get returns the cached count, loading it from the database on a miss.
func (c *RedisUnreadCounter) Get(ctx context.Context, email string) (int64, error) {
	key := unreadKey(email)

	count, err := c.redisClient.Get(ctx, key).Int64()
	if err == nil {
		return count, nil
	}
	cacheable := true
	if !errors.Is(err, redis.Nil) {
		c.log.Warnf("Failed to read unread counter for %s, using database: %+v", email, err)
		cacheable = false
	}

	var gen string
	if cacheable {
		if gen, err = c.readGeneration(ctx, unreadGenKey(email)); err != nil {
			c.log.Debugf("Failed to read unread generation for %s: %+v", email, err)
			cacheable = false
		}
	}

	count, err = c.notificationRepo.CountUnread(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("count unread for %s: %w", email, err)
	}

	if cacheable {
		// A write since gen was read leaves the key empty for the next Get.
		err := cacheLoadedScript.Run(ctx, c.redisClient, []string{key, unreadGenKey(email)},
			gen, count, unreadCounterTTL.Milliseconds()).Err()
		if err != nil {
			c.log.Debugf("Failed to cache unread counter for %s: %+v", email, err)
		}
	}
	return count, nil
}

// SyncOnStartup recomputes every cached counter from the notifications table.
//
// Recipients are processed in batches of 500 with one script call per batch.
// Recipients with no unread rows are not touched; their keys load lazily.
func (c *RedisUnreadCounter) SyncOnStartup(ctx context.Context) error {
	c.log.Info("Starting unread counter re-sync from database...")
	startTime := time.Now()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	offset := 0
	totalSynced := 0

	for {
		gen, err := c.readGeneration(ctx, unreadGlobalGenKey)
		if err != nil {
			return fmt.Errorf("read unread generation: %w", err)
		}

		counts, err := c.notificationRepo.CountUnreadGrouped(ctx, syncBatchSize, offset)
		if err != nil {
			c.log.Errorf("Failed to query unread counts at offset %d: %+v", offset, err)
			return fmt.Errorf("query unread counts at offset %d: %w", offset, err)
		}

		if len(counts) == 0 {
			if offset == 0 {
				c.log.Info("No unread notifications found for sync")
			}
			break
		}

		keys := make([]string, 0, len(counts)+1)
		args := make([]interface{}, 0, len(counts)+2)
		keys = append(keys, unreadGlobalGenKey)
		args = append(args, gen, unreadCounterTTL.Milliseconds())
		for _, row := range counts {
			keys = append(keys, unreadKey(row.UserEmail))
			args = append(args, row.Unread)
		}

		written, err := syncBatchScript.Run(ctx, c.redisClient, keys, args...).Int()
		if err != nil {
			c.log.Errorf("Failed to write batch at offset %d: %+v", offset, err)
			return fmt.Errorf("write batch at offset %d: %w", offset, err)
		}
		if written == 0 {
			c.log.Debugf("Counters changed during batch at offset %d, left to load lazily", offset)
		}

		totalSynced += len(counts)
		c.log.Debugf("Synced batch: %d recipients", len(counts))

		if len(counts) < syncBatchSize {
			break
		}

		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	c.log.Infof("Unread counter re-sync completed: %d recipients synced in %v", totalSynced, time.Since(startTime))
	return nil
}
