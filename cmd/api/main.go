package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"public-complaint-api/config"
	"public-complaint-api/controllers"
	"public-complaint-api/monitor"
	"public-complaint-api/routes"
	"public-complaint-api/services"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logCloser, logWriter := config.InitLogging()
	if logCloser != nil {
		defer logCloser.Close()
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect database: %v", err)
	}

	if cfg.AutoMigrate {
		if err := config.MigrateUp(cfg); err != nil {
			log.Fatalf("❌ Failed to run migrations: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		log.Printf("Warning: %v (realtime notifications and token revocation disabled)", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaWriter := config.NewKafkaWriter(cfg)
	if kafkaWriter != nil {
		defer kafkaWriter.Close()
	}

	files, err := services.NewDiskStorage(cfg.UploadPath)
	if err != nil {
		log.Fatalf("❌ Failed to prepare upload directory: %v", err)
	}

	userStore := services.NewGormUserStore(db)
	notificationStore := services.NewGormNotificationStore(db)

	var publishers services.Publishers
	if redisClient != nil {
		publishers = append(publishers, services.NewRedisNotificationPublisher(redisClient))
	}
	if kafkaWriter != nil {
		publishers = append(publishers, services.NewKafkaEventPublisher(kafkaWriter))
	}

	dispatchOpts := services.DispatcherOptions{
		Notifications: notificationStore,
		Users:         userStore,
		TrackingURL:   cfg.TrackingURL,
	}
	if mailer := config.NewMailer(cfg.SMTP); mailer.Enabled() {
		dispatchOpts.Mailer = mailer
	} else {
		log.Println("SMTP not configured, e-mail notifications disabled")
	}
	if len(publishers) > 0 {
		dispatchOpts.Publisher = publishers
	}

	catalog := services.NewCatalogService(services.NewGormServiceStore(db), cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
	complaints := services.NewComplaintService(services.ComplaintDeps{
		Complaints: services.NewGormComplaintStore(db),
		Catalog:    catalog,
		Files:      files,
		Policy:     services.NewUploadPolicy(cfg.MaxUploadKB),
		Notifier:   services.NewNotificationDispatcher(dispatchOpts),
	})

	var revoker services.TokenRevoker
	if redisClient != nil {
		revoker = services.NewRedisTokenRevoker(redisClient)
	}
	auth := services.NewAuthService(userStore, cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour, revoker)

	checks := map[string]monitor.Pinger{
		"database": func(ctx context.Context) error { return config.PingDB(ctx, db) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := routes.NewRouter(routes.Options{
		CORSOrigins:        cfg.CORSOrigins,
		LogToken:           cfg.LogToken,
		LogWriter:          logWriter,
		Checks:             checks,
		MaxMultipartMemory: 8 << 20,
	}, routes.Handlers{
		Auth:          controllers.NewAuthController(auth),
		Services:      controllers.NewServiceController(catalog),
		Complaints:    controllers.NewComplaintController(complaints),
		Notifications: controllers.NewNotificationController(services.NewNotificationService(notificationStore)),
		Tokens:        auth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	log.Printf("📊 Database connected successfully")
	log.Printf("🌐 CORS configured for %v", cfg.CORSOrigins)
	if cfg.IsProduction() {
		log.Printf("🏭 Running in production mode")
	} else {
		log.Printf("🔧 Running in development mode")
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
