package stdlogger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acctmgr/acctmgr/internal/logger/adapter/stdlogger"
)

type line struct {
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// captureLog points the global logger at a buffer for the duration of the test.
func captureLog(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(level)

	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []line {
	t.Helper()

	var out []line

	dec := json.NewDecoder(buf)
	for dec.More() {
		var l line
		require.NoError(t, dec.Decode(&l))

		out = append(out, l)
	}

	return out
}

func TestLevels(t *testing.T) {
	testCases := []struct {
		name     string
		call     func(l *stdlogger.Logger)
		level    zerolog.Level
		expected []line
	}{
		{
			name:     "debug filtered at info",
			call:     func(l *stdlogger.Logger) { l.Debugf("n=%d", 1) },
			level:    zerolog.InfoLevel,
			expected: nil,
		},
		{
			name:     "debug shown at debug",
			call:     func(l *stdlogger.Logger) { l.Debugf("n=%d", 1) },
			level:    zerolog.DebugLevel,
			expected: []line{{Level: "debug", Message: "n=1"}},
		},
		{
			name: "info warn error",
			call: func(l *stdlogger.Logger) {
				l.Infof("a %s", "b")
				l.Warningf("c")
				l.Errorf("%v", errors.New("boom"))
			},
			level: zerolog.InfoLevel,
			expected: []line{
				{Level: "info", Message: "a b"},
				{Level: "warn", Message: "c"},
				{Level: "error", Message: "boom"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t, tc.level)
			tc.call(stdlogger.New())
			assert.Equal(t, tc.expected, lines(t, buf))
		})
	}
}

func TestComponent(t *testing.T) {
	buf := captureLog(t, zerolog.InfoLevel)

	stdlogger.NewComponent("scheduler").Printf("refreshed %d gauges", 16)

	assert.Equal(t, []line{{Level: "info", Component: "scheduler", Message: "refreshed 16 gauges"}}, lines(t, buf))
}

func TestNewGorm(t *testing.T) {
	ctx := context.Background()

	buf := captureLog(t, zerolog.InfoLevel)
	stdlogger.NewGorm(false).Info(ctx, "migrated %s", "users")
	assert.Empty(t, lines(t, buf), "info is below the non debug gorm level")

	stdlogger.NewGorm(true).Info(ctx, "migrated %s", "users")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "gorm", got[0].Component)
	assert.Contains(t, got[0].Message, "migrated users")

	stdlogger.NewGorm(false).Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	got = lines(t, buf)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "SLOW SQL")
}
