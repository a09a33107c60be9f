package modelstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Compile-time check.
var _ Store = (*Throttled)(nil)

// ThrottleConfig holds the limits applied by a Throttled store.
type ThrottleConfig struct {
	// BytesPerSec is the maximum snapshot throughput across Put and
	// Get. If 0, unlimited.
	BytesPerSec int64

	// MaxConcurrent is the maximum number of in-flight store
	// operations. If 0, defaults to 1.
	MaxConcurrent int64
}

// Throttled wraps a Store with byte-rate limiting and a bound on
// concurrent operations, keeping background snapshot traffic from
// starving prediction work.
type Throttled struct {
	inner   Store
	limiter *rate.Limiter // nil if unlimited
	sem     *semaphore.Weighted
}

// Throttle wraps inner with the given limits.
func Throttle(inner Store, cfg ThrottleConfig) *Throttled {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	t := &Throttled{
		inner: inner,
		sem:   semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.BytesPerSec > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}
	return t
}

// waitBytes blocks until the rate limiter admits n bytes. Payloads
// larger than the burst are admitted in burst-sized chunks.
func (t *Throttled) waitBytes(ctx context.Context, n int) error {
	if t.limiter == nil || n <= 0 {
		return nil
	}

	burst := t.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Put implements Store.
func (t *Throttled) Put(ctx context.Context, name string, data []byte) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer t.sem.Release(1)

	if err := t.waitBytes(ctx, len(data)); err != nil {
		return err
	}
	return t.inner.Put(ctx, name, data)
}

// Get implements Store.
func (t *Throttled) Get(ctx context.Context, name string) ([]byte, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	data, err := t.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := t.waitBytes(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete implements Store.
func (t *Throttled) Delete(ctx context.Context, name string) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer t.sem.Release(1)

	return t.inner.Delete(ctx, name)
}

// List implements Store.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	return t.inner.List(ctx, prefix)
}
