package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	mu    sync.Mutex
	m     map[string][]byte
	err   error
	calls int
}

func (p *flakyProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, false, p.err
	}
	b, ok := p.m[key]
	return b, ok, nil
}

func (p *flakyProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return false, p.err
	}
	p.m[key] = value
	return true, nil
}

func (p *flakyProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return p.err
}

func (p *flakyProvider) Close(context.Context) error { return nil }

func TestPassThroughWhileClosed(t *testing.T) {
	ctx := context.Background()
	inner := &flakyProvider{m: map[string][]byte{}}
	p := New(inner, Config{})

	ok, err := p.Add(ctx, "k", []byte("v"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	_, ok, err = p.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gobreaker.StateClosed, p.State())
}

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	inner := &flakyProvider{m: map[string][]byte{}, err: boom}

	var transitions []gobreaker.State
	p := New(inner, Config{
		ConsecutiveFailures: 3,
		Timeout:             time.Hour,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			transitions = append(transitions, to)
		},
	})

	for i := 0; i < 3; i++ {
		_, _, err := p.Get(ctx, "k")
		require.ErrorIs(t, err, boom)
	}
	require.Equal(t, gobreaker.StateOpen, p.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	before := inner.calls
	_, _, err := p.Get(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, inner.calls, "open breaker must not reach the store")
}
