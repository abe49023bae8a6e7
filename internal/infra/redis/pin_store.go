// Package redis backs PIN reservation and quiz caching with Redis so that
// several host instances can share one deployment.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PinStore reserves session PINs via SETNX with a TTL. Reservations are
// best-effort liveness markers: a Redis outage degrades to local-only
// collision checks instead of failing session creation.
type PinStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewPinStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *PinStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PinStore{client: client, ttl: ttl, log: log}
}

// Reserve claims the PIN if no other instance holds it.
func (s *PinStore) Reserve(ctx context.Context, pin string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(pin), "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release frees the PIN. Failures are logged and swallowed; the TTL cleans
// up eventually.
func (s *PinStore) Release(ctx context.Context, pin string) {
	if err := s.client.Del(ctx, s.key(pin)).Err(); err != nil {
		s.log.Warn("release pin", zap.String("pin", pin), zap.Error(err))
	}
}

func (s *PinStore) key(pin string) string {
	return "yupp:pin:" + pin
}
