package cache

import (
	"context"
	"encoding/json"
	"time"

	"jurisperform-be/pkg/course"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const contentKeyPrefix = "course:content:"

// ContentCache keeps successful course loads in Redis so repeated turns on
// the same course skip the database. Redis failures degrade to misses.
type ContentCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewContentCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *ContentCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *ContentCache) key(courseId string) string {
	return contentKeyPrefix + courseId
}

func (c *ContentCache) Get(ctx context.Context, courseId string) (*course.LoadResult, bool) {
	if c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.key(courseId)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("content cache read failed", zap.String("course_id", courseId), zap.Error(err))
		}
		return nil, false
	}

	var result course.LoadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warn("content cache entry corrupt", zap.String("course_id", courseId), zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (c *ContentCache) Set(ctx context.Context, courseId string, result *course.LoadResult) {
	if c.rdb == nil || result == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(courseId), raw, c.ttl).Err(); err != nil {
		c.log.Warn("content cache write failed", zap.String("course_id", courseId), zap.Error(err))
	}
}

var _ course.ResultCache = (*ContentCache)(nil)
