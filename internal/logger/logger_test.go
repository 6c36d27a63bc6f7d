package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects l to a buffer and returns a func decoding the single
// entry written to it.
func capture(t *testing.T, l *Logger) func() map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l.Logger = l.Output(&buf)
	return func() map[string]any {
		t.Helper()
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
		return entry
	}
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("server")
	entry := capture(t, l)

	l.Info().Msg("started")

	got := entry()
	assert.Equal(t, "server", got["role"])
	assert.Equal(t, "started", got["message"])
	assert.Contains(t, got, "time")
	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNop(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Error().Msg("dropped")

	assert.Empty(t, buf.String())
}

func TestNewConsoleLogger_WritesReadableOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("cli", &buf)

	l.Info().Msg("key generated")

	assert.Contains(t, buf.String(), "key generated")
	assert.Contains(t, buf.String(), "cli")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestChildLoggers(t *testing.T) {
	tests := []struct {
		name    string
		derive  func(*Logger) *Logger
		want    map[string]any
		missing []string
	}{
		{
			name:    "child keeps parent fields",
			derive:  (*Logger).GetChildLogger,
			want:    map[string]any{"role": "scheduler"},
			missing: []string{"group_id", "cycle_id"},
		},
		{
			name:    "group",
			derive:  func(l *Logger) *Logger { return l.ForGroup(7) },
			want:    map[string]any{"role": "scheduler", "group_id": float64(7)},
			missing: []string{"cycle_id"},
		},
		{
			name:   "cycle",
			derive: func(l *Logger) *Logger { return l.ForCycle(42, "cycle-1") },
			want:   map[string]any{"role": "scheduler", "group_id": float64(42), "cycle_id": "cycle-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			parent := &Logger{zerolog.New(&buf).With().Str("role", "scheduler").Logger()}

			child := tt.derive(parent)
			require.NotSame(t, parent, child)
			child.Info().Msg("tick")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			for k, v := range tt.want {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.missing {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("trace_id", "t-1").Logger()

	FromContext(zl.WithContext(context.Background())).Info().Msg("handled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "t-1", entry["trace_id"])
}

func TestFromContext_WithoutLogger(t *testing.T) {
	require.NotNil(t, FromContext(context.Background()))
}

func TestFromRequest(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("account_id", "alice").Logger()
	req := httptest.NewRequest("GET", "/api/groups", nil)
	req = req.WithContext(zl.WithContext(req.Context()))

	FromRequest(req).Info().Msg("listing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "alice", entry["account_id"])
}

func TestFromRequest_WithoutLogger(t *testing.T) {
	require.NotNil(t, FromRequest(httptest.NewRequest("GET", "/", nil)))
}
