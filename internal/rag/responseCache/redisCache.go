package responseCache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type RedisCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisCache(store *redisStore.Store) *RedisCache {
	return &RedisCache{store: store, logger: logger_i.NewLogger("ResponseCache")}
}

func (c *RedisCache) Get(ctx context.Context, key string) (jobModel.JobResult, bool, error) {
	raw, err := c.store.Get(ctx, key)
	if c.store.IsNil(err) {
		return jobModel.JobResult{}, false, nil
	}
	if err != nil {
		return jobModel.JobResult{}, false, fmt.Errorf("reading cache: %w", err)
	}
	var result jobModel.JobResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.WithContext(ctx).Warn("Dropping malformed cache entry", "key", key, "error", err)
		return jobModel.JobResult{}, false, nil
	}
	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value jobModel.JobResult, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, ttl)
}

func (c *RedisCache) InvalidateDocument(ctx context.Context, docId string) error {
	pattern := escapeGlob(documentPrefix(docId)) + "*"
	keys, err := c.store.ScanKeys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	c.logger.WithContext(ctx).Debug("Invalidating cached responses", "documentId", docId, "count", len(keys))
	return c.store.Del(ctx, keys...)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
