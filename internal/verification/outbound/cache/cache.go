// Package cache stores pending verification requests with a TTL.
package cache

import (
	"context"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

// DefaultTTL applies when a store is built with a non-positive ttl.
const DefaultTTL = 15 * time.Minute

// Store is implemented by Redis and Memory.
type Store interface {
	Get(ctx context.Context, email string) (*entity.Request, error)
	Put(ctx context.Context, req entity.Request) (bool, error)
	Delete(ctx context.Context, email string) error
}

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Memory)(nil)
)

const keyPrefix = "verification:request:"

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
