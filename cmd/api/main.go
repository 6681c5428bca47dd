// @title           Stars Workflow API
// @version         1.0
// @description     프로젝트 요청, 배정, 제출, 피드백, 정산 워크플로우 API

// @host      localhost:8000
// @BasePath  /api/workflow

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	_ "stars-workflow-api/docs" // Swagger docs import

	"stars-workflow-api/internal/client"
	"stars-workflow-api/internal/config"
	"stars-workflow-api/internal/database"
	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/job"
	"stars-workflow-api/internal/lock"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/router"
	"stars-workflow-api/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Workflow Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	m := metrics.New(logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	db, ok := connectDatabase(cfg, logger, quit)
	if !ok {
		logger.Info("Shutdown requested before database became available")
		return
	}

	if err := database.SafeAutoMigrate(db, logger); err != nil {
		logger.Warn("Failed to run database migrations", zap.Error(err))
	}
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	stopDBStats := database.StartDBStatsCollector(db, m, 15*time.Second)

	redisClient, err := database.InitRedis(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, settlement round leases disabled", zap.Error(err))
		redisClient = nil
	}

	var locker lock.RoundLocker = lock.NoopRoundLocker{}
	if redisClient != nil {
		locker = lock.NewRedisRoundLocker(redisClient, cfg.Settlement.LeaseTTL, logger)
	}

	// interface stays nil unless the client was built, so the service can report uploads as unavailable
	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		c, err := client.NewS3Client(&cfg.S3, m)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, upload URLs disabled", zap.Error(err))
		} else {
			s3Client = c
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, upload URLs disabled")
	}

	routerCfg := router.Config{
		DB:                    db,
		Redis:                 redisClient,
		Logger:                logger,
		JWTSecret:             cfg.JWT.Secret,
		BasePath:              cfg.Server.BasePath,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		Metrics:               m,
		S3Client:              s3Client,
		Locker:                locker,
		Disburser:             service.NoopDisburser{},
		MaxVersionSlots:       cfg.Workflow.MaxVersionSlots,
		UploadExpiry:          cfg.S3.UploadExpiry,
		SettlementConcurrency: cfg.Settlement.Concurrency,
	}
	services := router.BuildServices(routerCfg)
	routerCfg.Services = &services
	r := router.Setup(routerCfg)

	statsSource := service.NewWorkflowStatsSource(
		repository.NewReportRepository(db),
		repository.NewSettlementRepository(db),
	)
	collector := metrics.NewBusinessMetricsCollector(statsSource, m, logger, time.Minute)
	collector.Start()

	settlementJob := job.NewSettlementJob(services.Settlement, domain.SettlementRound(cfg.Settlement.Round), cfg.Settlement.LeaseTTL, logger)
	if _, err := settlementJob.Start(cfg.Settlement.CronSchedule); err != nil {
		logger.Error("Failed to schedule settlement job", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Workflow Service started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	settlementJob.Stop(ctx)
	collector.Stop()
	close(stopDBStats)

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// connectDatabase connects once, then keeps retrying in the background until
// the database answers or a shutdown signal arrives.
func connectDatabase(cfg *config.Config, logger *zap.Logger, quit <-chan os.Signal) (*gorm.DB, bool) {
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err == nil {
		logger.Info("Database connected successfully")
		database.SetDB(db)
		return db, true
	}

	logger.Warn("Failed to connect to database on startup, will retry in background", zap.Error(err))
	connected := make(chan *gorm.DB, 1)
	database.NewAsync(dbConfig, 5*time.Second, logger, func(db *gorm.DB) {
		connected <- db
	})

	select {
	case db := <-connected:
		return db, true
	case <-quit:
		return nil, false
	}
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
