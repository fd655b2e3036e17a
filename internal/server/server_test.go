package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDatabase reports a fixed health status without a real pool
type fakeDatabase struct {
	up bool
}

func (f *fakeDatabase) Health(ctx context.Context) map[string]string {
	if f.up {
		return map[string]string{"status": "up"}
	}
	return map[string]string{"status": "down", "error": "db down: connection refused"}
}

func (f *fakeDatabase) DB() *sql.DB  { return nil }
func (f *fakeDatabase) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test"},
		Redis:     config.RedisConfig{CacheTTL: time.Minute},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
	}
}

func getHealth(t *testing.T, srv *Server) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealth_DatabaseOnly(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{up: true}, nil)

	code, body := getHealth(t, srv)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "redis")

	srv = NewServer(testConfig(), zap.NewNop(), &fakeDatabase{up: false}, nil)
	code, body = getHealth(t, srv)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", body["database"].(map[string]interface{})["status"])
}

func TestHealth_RedisDownIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{up: true}, client)

	code, body := getHealth(t, srv)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", body["redis"].(map[string]interface{})["status"])

	mr.Close()
	code, body = getHealth(t, srv)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", body["redis"].(map[string]interface{})["status"])
}

func TestHealth_NotRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{up: true}, client)

	for i := 0; i < 5; i++ {
		code, _ := getHealth(t, srv)
		require.Equal(t, http.StatusOK, code, "request %d", i+1)
	}
}

func TestRoutes_UnknownPathIs404(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), &fakeDatabase{up: true}, nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
