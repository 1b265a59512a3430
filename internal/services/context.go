package services

import (
	"context"
	"time"
)

// storeTimeout bounds every store round-trip a service makes. Repository
// errors caused by the deadline surface as repositories.ErrTimeout, which
// the transport layer maps to a retryable response.
const storeTimeout = 5 * time.Second

func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
