package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func localConfig() config.ServiceConfig {
	return config.ServiceConfig{
		HTTP: config.HTTPConfig{Address: "127.0.0.1:0"},
		GRPC: config.GRPCConfig{Address: "127.0.0.1:0"},
	}
}

func TestServer_HealthzAndShutdown(t *testing.T) {
	engine := NewEngine(logger.Nop())
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	srv, err := New("flight", localConfig(), engine, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	base := "http://" + srv.HTTPAddr()
	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	assert.Contains(t, body, "SERVING")

	resp, err := http.Get(base + "/ping")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(b))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_BadAddress(t *testing.T) {
	cfg := localConfig()
	cfg.GRPC.Address = "256.0.0.1:99999"
	_, err := New("flight", cfg, gin.New(), logger.Nop())
	assert.Error(t, err)
}

func TestMountSwagger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SwaggerFile), []byte(`{"swagger":"2.0"}`), 0o644))

	engine := gin.New()
	MountSwagger(engine, dir)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, swaggerSpec, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), swaggerSpec)
}

func TestMountSwagger_Disabled(t *testing.T) {
	engine := gin.New()
	MountSwagger(engine, "")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
