package google

import (
	"context"
	"log/slog"
	"sync"
	"time"

	ports "xlsimport/internal/sheets"
)

// Factory hands out a process-wide Sheets client cached with a TTL.
// Concurrent import jobs share one instance; Invalidate drops it so the
// next Get authenticates from scratch (exposed via the cache-clear
// endpoint for credential rotation).
type Factory struct {
	mu        sync.Mutex
	ttl       time.Duration
	client    ports.Client
	expiresAt time.Time

	// newClient is swappable in tests.
	newClient func(ctx context.Context) (ports.Client, error)
}

var _ ports.ClientProvider = (*Factory)(nil)

func NewFactory(ttl time.Duration) *Factory {
	return &Factory{
		ttl: ttl,
		newClient: func(ctx context.Context) (ports.Client, error) {
			return NewFromEnv(ctx)
		},
	}
}

func (f *Factory) Get(ctx context.Context) (ports.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if f.client != nil && now.Before(f.expiresAt) {
		return f.client, nil
	}

	cli, err := f.newClient(ctx)
	if err != nil {
		return nil, err
	}
	f.client = cli
	f.expiresAt = now.Add(f.ttl)
	slog.DebugContext(ctx, "Created Sheets client", "ttl", f.ttl)
	return cli, nil
}

func (f *Factory) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = nil
	f.expiresAt = time.Time{}
}
