package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apppayment "github.com/tiffin/backend/internal/application/payment"
)

const lockRetryInterval = 50 * time.Millisecond

// releaseScript deletes the lock key only if it still holds our token, so
// an expired lock reacquired by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisCustomerLocker serializes ledger mutations per customer across
// server instances using redis SET NX with a TTL.
type RedisCustomerLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCustomerLocker creates a new RedisCustomerLocker
func NewRedisCustomerLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCustomerLocker {
	return &RedisCustomerLocker{client: client, ttl: ttl, logger: logger}
}

// Lock acquires the customer lock, polling until it is free or ctx is done.
// The returned release function is safe to call once.
func (l *RedisCustomerLocker) Lock(ctx context.Context, customerID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("lock:customer:%s", customerID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire customer lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release customer lock",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		}
	}
	return release, nil
}

// Ensure RedisCustomerLocker implements CustomerLocker
var _ apppayment.CustomerLocker = (*RedisCustomerLocker)(nil)
