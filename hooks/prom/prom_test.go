package promhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cacheaside"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	h, err := New(reg, "app", prometheus.Labels{"template": "user"})
	require.NoError(t, err)

	h.Served("a", cacheaside.OutcomeHit)
	h.Served("a", cacheaside.OutcomeHit)
	h.Served("b", cacheaside.OutcomeStale)
	h.StoreReadFailed("c", errors.New("down"))
	h.StaleServed("b", 2*time.Hour, errors.New("db"))
	h.WriteDropped("d", false, errors.New("saturated"))
	h.WriteFailed("e", true, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.served.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.served.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.readFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.writeDrops.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.writeErrors.WithLabelValues("replace")))
	assert.Equal(t, 1, testutil.CollectAndCount(h.staleAge))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "app", nil)
	require.NoError(t, err)
	_, err = New(reg, "app", nil)
	assert.Error(t, err)
}
