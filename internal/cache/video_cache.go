package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-vidtube/internal/model"
)

const (
	videoKeyPrefix = "vidtube:video:"
	defaultTTL     = 5 * time.Minute
)

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// VideoCache is a read-through cache of single video documents.
//
// Every video has a generation counter next to its entry. Delete bumps the
// generation, and Fill only writes when the generation still matches the
// fence the reader took before loading from the store, so a reader that
// loaded a row before a concurrent update cannot put it back.
type VideoCache struct {
	client *redis.Client
	ttl    time.Duration
}

// fillScript sets KEYS[1] only while KEYS[2] still holds the fence ARGV[1].
// A missing generation counts as 0.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

func NewVideoCache(client *redis.Client, ttl time.Duration) *VideoCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &VideoCache{client: client, ttl: ttl}
}

// Get reports ok=false on a miss.
func (c *VideoCache) Get(ctx context.Context, id string) (model.Video, bool, error) {
	raw, err := c.client.Get(ctx, videoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Video{}, false, nil
	}
	if err != nil {
		return model.Video{}, false, fmt.Errorf("read cached video: %w", err)
	}

	var v model.Video
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.Video{}, false, fmt.Errorf("decode cached video: %w", err)
	}

	return v, true, nil
}

// Fence returns the current generation of a video. Take it before reading the
// store and hand it to Fill.
func (c *VideoCache) Fence(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read video generation: %w", err)
	}
	return gen, nil
}

// Fill caches v unless the video was invalidated after fence was taken.
// stored reports whether the entry was written.
func (c *VideoCache) Fill(ctx context.Context, v model.Video, fence int64) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode video: %w", err)
	}

	keys := []string{videoKey(v.ID), generationKey(v.ID)}
	written, err := fillScript.Run(ctx, c.client, keys,
		strconv.FormatInt(fence, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("write cached video: %w", err)
	}
	return written == 1, nil
}

// Delete drops the entry and bumps the generation so in-flight fills are
// discarded. The generation outlives any entry filled against it.
func (c *VideoCache) Delete(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), 2*c.ttl)
		pipe.Del(ctx, videoKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("evict cached video: %w", err)
	}
	return nil
}

// Both keys share a hash tag so the fill script stays on one cluster slot.
func videoKey(id string) string {
	return videoKeyPrefix + "{" + id + "}"
}

func generationKey(id string) string {
	return videoKeyPrefix + "{" + id + "}:gen"
}
