package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cacheaside"
)

func TestLogrusLogger(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Warn("cache write dropped", cacheaside.Fields{"key": "k", "update": true})

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, e.Level)
	assert.Equal(t, "cache write dropped", e.Message)
	assert.Equal(t, "k", e.Data["key"])
	assert.Equal(t, true, e.Data["update"])
}
