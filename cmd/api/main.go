package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/course-mgmt-api/api/swagger"
	"github.com/noah-isme/course-mgmt-api/internal/handler"
	"github.com/noah-isme/course-mgmt-api/internal/middleware"
	"github.com/noah-isme/course-mgmt-api/internal/repository"
	"github.com/noah-isme/course-mgmt-api/internal/service"
	"github.com/noah-isme/course-mgmt-api/internal/worker"
	"github.com/noah-isme/course-mgmt-api/pkg/cache"
	"github.com/noah-isme/course-mgmt-api/pkg/config"
	"github.com/noah-isme/course-mgmt-api/pkg/database"
	"github.com/noah-isme/course-mgmt-api/pkg/jobs"
	"github.com/noah-isme/course-mgmt-api/pkg/logger"
	"github.com/noah-isme/course-mgmt-api/pkg/mailer"
	sendgridmail "github.com/noah-isme/course-mgmt-api/pkg/mailer/sendgrid"
	corsmiddleware "github.com/noah-isme/course-mgmt-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-mgmt-api/pkg/middleware/requestid"
)

// @title Course Management API
// @version 1.0.0
// @description Role-aware course management platform
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	classRepo := repository.NewClassRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var mail mailer.Mailer
	if cfg.Mail.SendGridKey != "" {
		mail = sendgridmail.New(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	} else {
		mail = mailer.NewLogMailer(logr)
	}

	notificationWorker := worker.NewNotificationWorker(userRepo, notificationRepo, mail, metrics, logr)
	queue := jobs.NewQueue("notifications", redisClient, notificationWorker.Handle, jobs.Config{
		Workers:    cfg.Queue.Workers,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
		Logger:     logr,
	})

	listingCache := cache.NewStore(redisClient, cfg.Cache.ListingTTL)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: "course-mgmt-api",
	})
	userService := service.NewUserService(userRepo, classRepo, validate, logr)
	cohortService := service.NewCohortService(cohortRepo, validate, logr)
	classService := service.NewClassService(classRepo, cohortRepo, listingCache, metrics, validate, logr)
	moduleService := service.NewModuleService(moduleRepo, validate, logr)
	offeringService := service.NewOfferingService(offeringRepo, moduleRepo, classRepo, userRepo, validate, logr)
	activityLogService := service.NewActivityLogService(activityLogRepo, offeringRepo, validate, logr)
	gradeService := service.NewGradeService(gradeRepo, userRepo, offeringRepo, validate, logr)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, queue, logr)
	deadlineService := service.NewDeadlineService(userRepo, activityLogRepo, queue, logr, cfg.Scheduler.Interval, nil)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Cohorts:       handler.NewCohortHandler(cohortService),
		Classes:       handler.NewClassHandler(classService),
		Modules:       handler.NewModuleHandler(moduleService),
		Offerings:     handler.NewOfferingHandler(offeringService),
		ActivityLogs:  handler.NewActivityLogHandler(activityLogService),
		Grades:        handler.NewGradeHandler(gradeService),
		Notifications: handler.NewNotificationHandler(notificationService, metrics),
	}, handler.RouterConfig{
		Prefix:      cfg.APIPrefix,
		EnableDocs:  cfg.Env != config.EnvProduction,
		AuthService: authService,
		Metrics:     metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Scheduler.Enabled {
		deadlineService.Start(ctx)
		defer deadlineService.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
