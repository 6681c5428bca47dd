package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stars-workflow-api/internal/client"
	"stars-workflow-api/internal/handler"
	"stars-workflow-api/internal/lock"
	"stars-workflow-api/internal/metrics"
	"stars-workflow-api/internal/middleware"
	"stars-workflow-api/internal/repository"
	"stars-workflow-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics

	// S3Client is nil when uploads are not configured
	S3Client  client.S3ClientInterface
	Locker    lock.RoundLocker
	Disburser service.Disburser

	MaxVersionSlots       int
	UploadExpiry          time.Duration
	SettlementConcurrency int

	// Services overrides the services built from DB when set
	Services *Services
}

// Services is the set of workflow services behind the HTTP handlers
type Services struct {
	Catalog    service.CatalogService
	Matching   service.MatchingService
	Submission service.SubmissionService
	Feedback   service.FeedbackService
	Settlement service.SettlementService
	Report     service.ReportService
}

// BuildServices wires repositories and services over cfg.DB
func BuildServices(cfg Config) Services {
	userRepo := repository.NewUserRepository(cfg.DB)
	requestRepo := repository.NewProjectRequestRepository(cfg.DB)
	projectRepo := repository.NewProjectRepository(cfg.DB)
	assignmentRepo := repository.NewAssignmentRepository(cfg.DB)
	submissionRepo := repository.NewSubmissionRepository(cfg.DB)
	feedbackRepo := repository.NewFeedbackRepository(cfg.DB)
	settlementRepo := repository.NewSettlementRepository(cfg.DB)
	reportRepo := repository.NewReportRepository(cfg.DB)

	return Services{
		Catalog:  service.NewCatalogService(userRepo, requestRepo, projectRepo, cfg.Metrics, cfg.Logger),
		Matching: service.NewMatchingService(requestRepo, assignmentRepo, userRepo, submissionRepo, cfg.Metrics, cfg.Logger),
		Submission: service.NewSubmissionService(submissionRepo, assignmentRepo, projectRepo, cfg.S3Client,
			service.SubmissionOptions{MaxVersionSlots: cfg.MaxVersionSlots, UploadExpiry: cfg.UploadExpiry},
			cfg.Metrics, cfg.Logger),
		Feedback: service.NewFeedbackService(feedbackRepo, submissionRepo, userRepo, cfg.Metrics, cfg.Logger),
		Settlement: service.NewSettlementService(settlementRepo, userRepo, cfg.Locker, cfg.Disburser,
			cfg.SettlementConcurrency, cfg.Metrics, cfg.Logger),
		Report: service.NewReportService(reportRepo, userRepo),
	}
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Prometheus scrapes the root path; the base path copy serves ingress-only deployments
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	services := cfg.Services
	if services == nil {
		built := BuildServices(cfg)
		services = &built
	}

	catalogHandler := handler.NewCatalogHandler(services.Catalog)
	assignmentHandler := handler.NewAssignmentHandler(services.Matching)
	submissionHandler := handler.NewSubmissionHandler(services.Submission)
	feedbackHandler := handler.NewFeedbackHandler(services.Feedback)
	settlementHandler := handler.NewSettlementHandler(services.Settlement)
	reportHandler := handler.NewReportHandler(services.Report)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/metrics", gin.WrapH(promhttp.Handler()))
		api.GET("/health", healthHandler.Health)
	}
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	{
		users := protected.Group("/users")
		{
			users.POST("", catalogHandler.CreateUser)
			users.GET("/:userId", catalogHandler.GetUser)
			users.POST("/:userId/deactivate", catalogHandler.DeactivateUser)
			users.GET("/:userId/activity", reportHandler.UserActivity)
		}

		requests := protected.Group("/project-requests")
		{
			requests.POST("", catalogHandler.CreateProjectRequest)
			requests.GET("", catalogHandler.ListProjectRequests)
			requests.GET("/:requestId", catalogHandler.GetProjectRequest)
			requests.POST("/:requestId/close", catalogHandler.CloseProjectRequest)
			requests.POST("/:requestId/cancel", catalogHandler.CancelProjectRequest)
			requests.POST("/:requestId/accept", assignmentHandler.AcceptAssignment)
			requests.GET("/:requestId/assignments", assignmentHandler.ListByRequest)
		}

		projects := protected.Group("/projects")
		{
			projects.POST("", catalogHandler.CreateProject)
			projects.GET("", catalogHandler.ListMyProjects)
			projects.GET("/:projectId", catalogHandler.GetProject)
		}

		assignments := protected.Group("/assignments")
		{
			assignments.GET("/me", assignmentHandler.ListMine)
			assignments.GET("/:assignmentId", assignmentHandler.GetAssignment)
			assignments.POST("/:assignmentId/cancel", assignmentHandler.CancelAssignment)
			assignments.PATCH("/:assignmentId/status", assignmentHandler.AdvanceAssignment)
			assignments.GET("/:assignmentId/submissions", submissionHandler.ListByAssignment)
			assignments.GET("/:assignmentId/slots/:slot/history", submissionHandler.ListSlotHistory)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.POST("", submissionHandler.CreateSubmission)
			submissions.POST("/upload-url", submissionHandler.RequestUploadURL)
			submissions.GET("/:submissionId", submissionHandler.GetSubmission)
			submissions.POST("/:submissionId/resubmit", submissionHandler.Resubmit)
			submissions.POST("/:submissionId/start-review", submissionHandler.StartReview)
			submissions.POST("/:submissionId/review", submissionHandler.Review)
			submissions.POST("/:submissionId/feedback", feedbackHandler.AddFeedback)
			submissions.GET("/:submissionId/feedback", feedbackHandler.ListFeedback)
		}

		feedback := protected.Group("/feedback")
		{
			feedback.GET("/:feedbackId", feedbackHandler.GetFeedback)
			feedback.PATCH("/:feedbackId", feedbackHandler.UpdateFeedback)
			feedback.POST("/:feedbackId/resolve", feedbackHandler.ResolveFeedback)
		}

		settlements := protected.Group("/settlements")
		{
			settlements.POST("", settlementHandler.RecordSettlement)
			settlements.GET("", settlementHandler.ListSettlements)
			settlements.GET("/summary", settlementHandler.QuarterSummary)
			settlements.POST("/rounds/process", settlementHandler.ProcessRound)
			settlements.GET("/:settlementId", settlementHandler.GetSettlement)
			settlements.PATCH("/:settlementId/round", settlementHandler.AssignRound)
			settlements.POST("/:settlementId/retry", settlementHandler.RetrySettlement)
		}
	}

	return r
}
