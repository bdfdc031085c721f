package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/google/uuid"
)

// Locker serialises ingestion per document id. Acquire blocks until the lock is held or ctx ends.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedLocker is an in-process Locker.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedEntry)}
}

func (k *KeyedLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		k.drop(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			k.drop(key, entry)
		})
	}, nil
}

func (k *KeyedLocker) drop(key string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}

// RedisLocker is a lease based Locker shared by every process pointed at the same redis.
type RedisLocker struct {
	store   *redisStore.Store
	ttl     time.Duration
	backoff time.Duration
}

func NewRedisLocker(store *redisStore.Store) *RedisLocker {
	return &RedisLocker{store: store, ttl: config.IngestLockTTL, backoff: config.IngestLockBackoff}
}

func lockKey(key string) string {
	return "lock:ingest:" + key
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.store.SetNX(ctx, lockKey(key), token, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquiring ingest lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if _, err := l.store.DelIfEquals(releaseCtx, lockKey(key), token); err != nil {
				logger.Warn("could not release ingest lock, it will expire", "key", key, "error", err)
			}
		})
	}, nil
}
