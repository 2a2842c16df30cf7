package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyReportsFailingDependency(t *testing.T) {
	router := gin.New()
	RegisterHealthRoutes(router, map[string]Pinger{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec := get(router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Contains(t, rec.Body.String(), `"redis":"connection refused"`)

	rec = get(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogsRequiresToken(t *testing.T) {
	disabled := gin.New()
	RegisterLogsRoute(disabled, "")
	assert.Equal(t, http.StatusUnauthorized, get(disabled, "/logs?token=").Code)

	router := gin.New()
	RegisterLogsRoute(router, "s3cret")
	assert.Equal(t, http.StatusUnauthorized, get(router, "/logs?token=wrong").Code)
}

func TestReadTailKeepsTheEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	content := strings.Repeat("a", 100) + "tail"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := readTail(path, 4)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(data))

	data, err = readTail(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestMonitorPage(t *testing.T) {
	router := gin.New()
	RegisterMonitorPage(router)

	rec := get(router, "/monitor")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}
