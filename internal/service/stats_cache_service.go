package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	statsKeyAll          = "consultation:stats:all"
	statsKeyDoctorPrefix = "consultation:stats:doctor:"

	// Timeout for individual Redis operations
	statsCacheTimeout = 2 * time.Second
)

// StatsCache stores computed consultation statistics per doctor scope.
// Failures are logged and treated as a miss; the database stays authoritative.
type StatsCache interface {
	Get(ctx context.Context, doctorID *uuid.UUID) (*entity.ConsultationStats, bool)
	Set(ctx context.Context, doctorID *uuid.UUID, stats *entity.ConsultationStats)
	Invalidate(ctx context.Context, doctorID uuid.UUID)
}

type RedisStatsCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewRedisStatsCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// StatsKey returns the cache key of a doctor scope, nil meaning clinic-wide.
func StatsKey(doctorID *uuid.UUID) string {
	if doctorID == nil {
		return statsKeyAll
	}
	return statsKeyDoctorPrefix + doctorID.String()
}

func (c *RedisStatsCache) Get(ctx context.Context, doctorID *uuid.UUID) (*entity.ConsultationStats, bool) {
	ctx, cancel := context.WithTimeout(ctx, statsCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, StatsKey(doctorID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read stats cache: %+v", err)
		}
		return nil, false
	}

	var stats entity.ConsultationStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warnf("Failed to decode cached stats: %+v", err)
		return nil, false
	}
	return &stats, true
}

func (c *RedisStatsCache) Set(ctx context.Context, doctorID *uuid.UUID, stats *entity.ConsultationStats) {
	if c.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		c.log.Warnf("Failed to encode stats for cache: %+v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, statsCacheTimeout)
	defer cancel()
	if err := c.redisClient.Set(ctx, StatsKey(doctorID), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write stats cache: %+v", err)
	}
}

// Invalidate drops the doctor's scope and the clinic-wide scope.
func (c *RedisStatsCache) Invalidate(ctx context.Context, doctorID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, statsCacheTimeout)
	defer cancel()

	if err := c.redisClient.Del(ctx, StatsKey(&doctorID), statsKeyAll).Err(); err != nil {
		c.log.Warnf("Failed to invalidate stats cache for doctor %s: %+v", doctorID, err)
		return
	}
	c.log.Debugf("Invalidated stats cache for doctor %s", doctorID)
}
