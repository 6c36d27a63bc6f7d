package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/utils"
)

func TestWithTraceID(t *testing.T) {
	h := NewHandler(nil, logger.Nop())

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.GetTraceIDFromContext(r.Context())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(traceIDHeader, "trace-1")
		w := httptest.NewRecorder()

		h.withTraceID(next).ServeHTTP(w, req)

		assert.Equal(t, "trace-1", seen)
		assert.Equal(t, "trace-1", w.Header().Get(traceIDHeader))
	})

	t.Run("generates one", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		h.withTraceID(next).ServeHTTP(w, req)

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(traceIDHeader))
	})
}

func TestResponseWriter(t *testing.T) {
	t.Run("first status wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := &responseWriter{ResponseWriter: rec}

		w.WriteHeader(http.StatusAccepted)
		w.WriteHeader(http.StatusInternalServerError)
		n, err := w.Write([]byte("ok"))

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, http.StatusAccepted, w.statusCode())
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, 2, w.size)
	})

	t.Run("write implies 200", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := &responseWriter{ResponseWriter: rec}

		_, _ = w.Write([]byte("a"))
		_, _ = w.Write([]byte("bc"))

		assert.Equal(t, http.StatusOK, w.statusCode())
		assert.Equal(t, 3, w.size)
	})

	t.Run("nothing written", func(t *testing.T) {
		w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		assert.Equal(t, http.StatusOK, w.statusCode())
		assert.Same(t, w.ResponseWriter, w.Unwrap())
	})
}

func TestWithLogging_PassesThrough(t *testing.T) {
	h := NewHandler(nil, logger.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.withLogging(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
