package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{LifeWindow: time.Hour})
	require.NoError(t, err)
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, p.Del(ctx, "k"))
	require.NoError(t, p.Del(ctx, "missing"))
}
