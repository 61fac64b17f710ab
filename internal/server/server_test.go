package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irislabs/agentshell/internal/config"
	"github.com/irislabs/agentshell/internal/logging"
)

// One server per test binary: metrics register against the default
// Prometheus registry, so building twice would collide.
func TestServerRoutes(t *testing.T) {
	srv, err := New(config.Default(), logging.NewDefault())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	for _, path := range []string{"/", "/health", "/services", "/tools", "/status", "/metrics"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "GET %s", path)
	}

	// All three providers registered
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	srv.Router().ServeHTTP(w, req)
	body := w.Body.String()
	for _, id := range []string{"shell", "filesystem", "skills"} {
		assert.Contains(t, body, id)
	}
}
