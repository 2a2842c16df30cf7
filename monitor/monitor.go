package monitor

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"public-complaint-api/config"
	"public-complaint-api/models"
)

// maxLogTail bounds how much of the log file /logs returns.
const maxLogTail = 256 * 1024

// Pinger checks a dependency for readiness.
type Pinger func(ctx context.Context) error

// RegisterHealthRoutes exposes liveness, readiness and Prometheus metrics.
func RegisterHealthRoutes(router *gin.Engine, checks map[string]Pinger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Response{
			Status:  models.ResponseSuccess,
			Message: "Public complaint API is running",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		results := make(map[string]string, len(checks))
		ready := true
		for name, ping := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			err := ping(ctx)
			cancel()
			if err != nil {
				ready = false
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, models.Response{Status: models.ResponseError, Message: "not ready", Data: results})
			return
		}
		c.JSON(http.StatusOK, models.Response{Status: models.ResponseSuccess, Data: results})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterLogsRoute serves the tail of the log file. Disabled without a token.
func RegisterLogsRoute(router *gin.Engine, token string) {
	router.GET("/logs", func(c *gin.Context) {
		if token == "" || subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, models.Response{Status: models.ResponseError, Message: "Unauthorized"})
			return
		}

		logData, err := readTail(config.LogFilePath(), maxLogTail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.Response{Status: models.ResponseError, Message: "Unable to read log"})
			return
		}

		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}

func readTail(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		if _, err := f.Seek(info.Size()-limit, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}
