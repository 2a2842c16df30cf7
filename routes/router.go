package routes

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"

	"public-complaint-api/middleware"
	"public-complaint-api/monitor"
)

// Options configures the HTTP engine around the API routes.
type Options struct {
	CORSOrigins []string
	LogToken    string
	LogWriter   io.Writer
	Checks      map[string]monitor.Pinger
	// MaxMultipartMemory caps in-memory multipart parsing; larger parts spill to disk.
	MaxMultipartMemory int64
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	logWriter := opts.LogWriter
	if logWriter == nil {
		logWriter = os.Stdout
	}

	router := gin.New()
	if opts.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	router.Use(gin.LoggerWithWriter(logWriter, "/health", "/metrics"))
	router.Use(gin.RecoveryWithWriter(logWriter))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(opts.CORSOrigins))
	router.Use(middleware.Metrics())

	// Register /logs and health endpoints before the API catch-all
	monitor.RegisterHealthRoutes(router, opts.Checks)
	monitor.RegisterLogsRoute(router, opts.LogToken)
	monitor.RegisterMonitorPage(router)

	SetupRoutes(router, h)
	return router
}
