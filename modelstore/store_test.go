package modelstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the Store behaviors every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PutGetRoundtrip", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "model-a", []byte("alpha")))

		data, err := s.Get(ctx, "model-a")
		require.NoError(t, err)
		assert.Equal(t, []byte("alpha"), data)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "model-a", []byte("beta")))

		data, err := s.Get(ctx, "model-a")
		require.NoError(t, err)
		assert.Equal(t, []byte("beta"), data)
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "model-b", []byte("b")))
		require.NoError(t, s.Put(ctx, "other", []byte("o")))

		names, err := s.List(ctx, "model-")
		require.NoError(t, err)
		assert.Equal(t, []string{"model-a", "model-b"}, names)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "model-a"))
		require.NoError(t, s.Delete(ctx, "model-a"))

		_, err := s.Get(ctx, "model-a")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemory(t *testing.T) {
	storeContract(t, NewMemory())
}

func TestMemoryCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("original")
	require.NoError(t, m.Put(ctx, "m", data))
	data[0] = 'X'

	got, err := m.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := m.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestLocal(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	storeContract(t, s)
}

func TestThrottled(t *testing.T) {
	t.Run("Passthrough", func(t *testing.T) {
		storeContract(t, Throttle(NewMemory(), ThrottleConfig{}))
	})

	t.Run("RateLimited", func(t *testing.T) {
		// Payload is one byte over the burst so the chunked admission
		// path runs without a noticeable wait.
		inner := NewMemory()
		ctx := context.Background()
		payload := make([]byte, 1<<20+1)

		put := Throttle(inner, ThrottleConfig{BytesPerSec: 1 << 20, MaxConcurrent: 2})
		require.NoError(t, put.Put(ctx, "big", payload))

		get := Throttle(inner, ThrottleConfig{BytesPerSec: 1 << 20, MaxConcurrent: 2})
		got, err := get.Get(ctx, "big")
		require.NoError(t, err)
		assert.Len(t, got, len(payload))
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := Throttle(NewMemory(), ThrottleConfig{BytesPerSec: 1})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Put(ctx, "m", []byte("data"))
		assert.Error(t, err)
	})
}
