package ports

import (
	"context"
	"time"
)

// CachePort abstracts the response cache used by the code runner to avoid
// re-billing the backend for unchanged code.
type CachePort interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
