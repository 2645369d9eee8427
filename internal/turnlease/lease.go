// Package turnlease provides a short-lived per-game mutual exclusion lease
// backed by Redis. Exactly one caller at a time may hold the lease for a game,
// which serialises turn advancement across processes.
package turnlease

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by Acquire when another caller currently holds the lease.
var ErrHeld = errors.New("turnlease: lease held")

const defaultTTL = 10 * time.Second

// Lease acquires and releases per-game advancement leases.
type Lease struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps an existing Redis client. A zero ttl uses the default.
func New(rdb *redis.Client, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Lease{rdb: rdb, ttl: ttl}
}

// NewFromURL dials Redis from a redis:// URL and pings it before returning.
func NewFromURL(redisURL string, ttl time.Duration) (*Lease, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for turn lease")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil { return nil, err }
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, ttl), nil
}

// Acquire takes the lease for gameID and returns an opaque token to release it
// with. Returns ErrHeld when someone else has it.
func (l *Lease) Acquire(ctx context.Context, gameID int64) (string, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, leaseKey(gameID), token, l.ttl).Result()
	if err != nil { return "", err }
	if !ok { return "", ErrHeld }
	return token, nil
}

// Release frees the lease if token still owns it. Releasing a lease that
// expired or was taken over is a no-op.
func (l *Lease) Release(ctx context.Context, gameID int64, token string) error {
	key := leaseKey(gameID)
	cur, err := l.rdb.Get(ctx, key).Result()
	if err == redis.Nil { return nil }
	if err != nil { return err }
	if cur != token { return nil }
	return l.rdb.Del(ctx, key).Err()
}

// Close releases the underlying Redis connection.
func (l *Lease) Close() error { return l.rdb.Close() }

func leaseKey(gameID int64) string {
	return "crank:lease:game:" + strconv.FormatInt(gameID, 10)
}

// ParseRedisURL converts a redis:// or rediss:// URL into client options.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil { return nil, err }
	if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" { if n, err := strconv.Atoi(p); err == nil { db = n } }
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
