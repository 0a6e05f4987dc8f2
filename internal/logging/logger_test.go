package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, maxHist int) *Logger {
	t.Helper()
	l, err := New(&Config{LogDir: t.TempDir(), MaxHistory: maxHist, Console: false})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestHistoryBounded(t *testing.T) {
	l := newTestLogger(t, 3)

	l.Info("test", "one", nil)
	l.Info("test", "two", nil)
	l.Info("test", "three", nil)
	l.Info("test", "four", nil)

	history := l.GetHistory(0)
	require.Len(t, history, 3)
	assert.Equal(t, "two", history[0].Message)
	assert.Equal(t, "four", history[2].Message)
}

func TestGetHistoryLimit(t *testing.T) {
	l := newTestLogger(t, 100)

	l.Warn("test", "older", nil)
	l.Warn("test", "newer", nil)

	history := l.GetHistory(1)
	require.Len(t, history, 1)
	assert.Equal(t, "newer", history[0].Message)
}

func TestErrorEntryCarriesError(t *testing.T) {
	l := newTestLogger(t, 10)

	l.Error("test", "boom", assert.AnError, map[string]interface{}{"key": "value"})

	history := l.GetHistory(1)
	require.Len(t, history, 1)
	assert.Equal(t, "error", history[0].Level)
	assert.Contains(t, history[0].Data, "key=value")
	assert.Contains(t, history[0].Data, "error="+assert.AnError.Error())
}

func TestOnLogStreams(t *testing.T) {
	l := newTestLogger(t, 10)

	got := make(chan LogEntry, 1)
	l.SetOnLog(func(e LogEntry) { got <- e })

	l.Info("gateway", "client connected", nil)

	select {
	case entry := <-got:
		assert.Equal(t, "gateway", entry.Component)
		assert.Equal(t, "client connected", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("onLog never fired")
	}
}
