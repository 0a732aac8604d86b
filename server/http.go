package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"synerx-dashboard/config"
	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
	jobHandler "synerx-dashboard/handler"
	"synerx-dashboard/pkg/backend"
	"synerx-dashboard/pkg/rabbitmq"
	"synerx-dashboard/repository"
	"synerx-dashboard/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	}

	repo := repository.NewRepo(cfg.DB)
	upstream := backend.NewClient(cfg.Backend)

	feed := service.NewJobFeed(repo, upstream)
	if err := service.HydrateFromRepo(ctx, feed, repo); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to hydrate job feed")
	}

	publisher := rabbitmq.NewPublisher(conn, cfg.Queue)
	dashboardService := service.NewDashboardService(repo, upstream, feed)
	playbackService := service.NewPlaybackService(repo)
	uploadService := service.NewUploadService(repo, cfg, publisher, feed)
	storageService := service.NewStorageService(repo, cfg)
	authService := service.NewAuthService(repo, cfg.Auth)

	serviceDeps := jobHandler.ServiceDependencies{
		Feed:     feed,
		Repo:     repo,
		Playback: playbackService,
	}

	// Progress events from the inference backend
	progressConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, jobHandler.JobProgressHandler)
	go func() {
		err := progressConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Job progress consumer error")
		}
	}()

	// Tracking-result batches for finished jobs
	trackingConsumer := rabbitmq.NewTrackingConsumer(conn, cfg.Queue, cfg.Server.Workers, jobHandler.TrackingResultsHandler)
	go func() {
		err := trackingConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Tracking results consumer error")
		}
	}()

	// Upstream job feed over WebSocket
	stream := backend.NewJobStream(cfg.Backend, func(jobs []dto.JobSnapshot) {
		feed.ApplySnapshot(ctx, jobs)
	})
	go stream.Run(ctx)

	api := NewAPI(cfg, dashboardService, playbackService, uploadService, storageService, authService, feed)

	r := gin.Default()
	r.Use(corsMiddleware())
	registerRoutes(r, api)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", api.signUp)
		auth.POST("/signin", api.signIn)
		auth.POST("/confirm", api.confirmEmail)
		auth.POST("/reset-password", api.requestPasswordReset)
		auth.POST("/reset-password/confirm", api.resetPassword)
	}

	protected := r.Group("/", authMiddleware(api.auth))
	{
		protected.PUT("/auth/profile", api.updateProfile)
		protected.PUT("/auth/password", api.changePassword)

		protected.GET("/status", api.systemStatus)
		protected.GET("/recent-activity", api.recentActivity)

		protected.GET("/jobs/status", api.jobsStatus)
		protected.POST("/jobs/:id/cancel", api.cancelJob)

		protected.GET("/analytics/summary", api.analyticsSummary)
		protected.GET("/analytics/all", api.analyticsAll)
		protected.GET("/analytics/report.pdf", api.analyticsReport)
		protected.GET("/correlation-analysis/", api.correlationAnalysis)
		protected.GET("/data/tracking/filter", api.filterTracking)

		protected.GET("/videos", api.listVideos)
		protected.GET("/videos/:id/results", api.videoResults)
		protected.POST("/upload", api.uploadVideo)

		protected.GET("/storage/info", api.storageInfo)
		protected.GET("/storage/videos", api.storageVideos)
		protected.POST("/storage/videos/delete", api.deleteStorageVideos)
		protected.POST("/storage/cleanup", api.storageCleanup)
		protected.GET("/storage/video/:name", api.videoDetail)
		protected.GET("/storage/video/:name/download", api.downloadVideoURL)
		protected.GET("/storage/video/:name/signed", api.signedVideoURL)
	}

	r.GET("/ws/jobs", api.jobsWebSocket)
	r.GET("/ws/video-stream/:job_id", api.videoStreamWebSocket)
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
