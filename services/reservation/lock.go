package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ResourceLocker serializes reservation writes per resource. Acquire
// blocks until the lock is held or the wait budget is exhausted, in which
// case it returns *LockTimeoutError. Callers on disjoint resources never
// contend.
type ResourceLocker interface {
	Acquire(ctx context.Context, resourceID string, wait time.Duration) (release func(), err error)
}

// RedisLocker implements ResourceLocker with a redis advisory lock keyed
// by resource id. The lock auto-expires so a crashed holder cannot wedge a
// resource.
type RedisLocker struct {
	Client *redis.Client
	// TTL bounds how long a holder may keep the lock; must exceed the
	// reservation transaction's worst case.
	TTL time.Duration
}

// releaseScript deletes the key only if this caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, resourceID string, wait time.Duration) (func(), error) {
	key := "reslock:" + resourceID
	token := uuid.New().String()
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	deadline := time.Now().Add(wait)
	backoff := 5 * time.Millisecond
	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err == nil && ok {
			release := func() {
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				releaseScript.Run(rctx, l.Client, []string{key}, token)
			}
			return release, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, &LockTimeoutError{ResourceID: resourceID}
		}
		if time.Now().After(deadline) {
			return nil, &LockTimeoutError{ResourceID: resourceID}
		}
		select {
		case <-ctx.Done():
			return nil, &LockTimeoutError{ResourceID: resourceID}
		case <-time.After(backoff):
		}
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
}

// LocalLocker implements ResourceLocker with in-process per-resource
// mutexes. It is the single-instance fallback and the locker used in
// tests; a multi-replica deployment needs RedisLocker.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(resourceID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[resourceID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[resourceID] = s
	}
	return s
}

func (l *LocalLocker) Acquire(ctx context.Context, resourceID string, wait time.Duration) (func(), error) {
	s := l.slot(resourceID)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-s }) }, nil
	case <-timer.C:
		return nil, &LockTimeoutError{ResourceID: resourceID}
	case <-ctx.Done():
		return nil, &LockTimeoutError{ResourceID: resourceID}
	}
}
