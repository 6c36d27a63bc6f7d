package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Independence(t *testing.T) {
	client1 := NewHTTPClient("http://a.local", time.Second)
	client2 := NewHTTPClient("http://a.local", time.Second)

	require.NotNil(t, client1.Client)
	assert.NotSame(t, client1.Client, client2.Client)
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	assert.Equal(t, 3*time.Second, NewHTTPClient("http://a.local", 3*time.Second).GetClient().Timeout)
	assert.Zero(t, NewHTTPClient("http://a.local", 0).GetClient().Timeout)
}

func TestNewHTTPClient_SendsDefaults(t *testing.T) {
	var accept, agent, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		agent = r.Header.Get("User-Agent")
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL, time.Second).R().Get("/ping")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, "application/json", accept)
	assert.Equal(t, "go-list-sync", agent)
	assert.Equal(t, "/ping", path)
}
