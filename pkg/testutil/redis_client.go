package testutil

import (
	"context"
	"time"
)

type MockRedisClient struct {
	IncrWithTTLFunc func(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

func (m *MockRedisClient) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if m.IncrWithTTLFunc != nil {
		return m.IncrWithTTLFunc(ctx, key, ttl)
	}

	return 1, nil
}
