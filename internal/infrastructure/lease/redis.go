// Package lease provides per-stage run exclusivity.
package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"TrendPress/internal/domain"
	"TrendPress/internal/ports"
)

const (
	// DefaultTTL bounds how long a crashed run can hold a stage.
	DefaultTTL = 2 * time.Hour

	keyPrefix = "trendpress:lease:"
)

// ErrNotHeld is returned when releasing a lease that expired or was taken over.
var ErrNotHeld = errors.New("lease not held")

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLease grants stage leases across processes with SET NX and a token.
type RedisLease struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.Lease = (*RedisLease)(nil)

// NewRedisLease wires a Redis client; ttl defaults to DefaultTTL.
func NewRedisLease(client redis.UniversalClient, ttl time.Duration) *RedisLease {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLease{client: client, ttl: ttl}
}

// TryAcquire takes the stage lease without blocking.
func (l *RedisLease) TryAcquire(ctx context.Context, stage string) (func(context.Context) error, error) {
	key := keyPrefix + stage
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", stage, err)
	}
	if !ok {
		return nil, fmt.Errorf("stage %s: %w", stage, domain.ErrLeaseHeld)
	}

	release := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("release lease %s: %w", stage, err)
		}
		if n == 0 {
			return fmt.Errorf("stage %s: %w", stage, ErrNotHeld)
		}
		return nil
	}
	return release, nil
}
