package database

import (
	"context"
	"time"
)

// PingFunc checks one backing store.
type PingFunc func(ctx context.Context) error

// Check reports the reachability of each backing store by name. A nil value
// means the store answered within the timeout.
func Check(ctx context.Context, stores map[string]PingFunc) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out := make(map[string]error, len(stores))
	for name, ping := range stores {
		out[name] = ping(ctx)
	}
	return out
}
