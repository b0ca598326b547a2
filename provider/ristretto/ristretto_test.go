package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSetWaitGetDel(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	defer p.Close(ctx)

	ok, err := p.Set(ctx, "k", []byte("v"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	p.Wait()

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, p.Del(ctx, "k"))
	_, ok, _ = p.Get(ctx, "k")
	assert.False(t, ok)
}
