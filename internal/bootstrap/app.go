package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobportal-backend/internal/applications"
	googleauth "jobportal-backend/internal/auth"
	"jobportal-backend/internal/companies"
	"jobportal-backend/internal/documents"
	"jobportal-backend/internal/events"
	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/profiles"
	"jobportal-backend/internal/queue"
	"jobportal-backend/internal/services/health"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/server"
	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/shared/storage/cache"
	"jobportal-backend/internal/shared/storage/db"
	"jobportal-backend/internal/shared/storage/object"
	localstore "jobportal-backend/internal/shared/storage/object/local"
	s3store "jobportal-backend/internal/shared/storage/object/s3"
	"jobportal-backend/internal/uploads"
	"jobportal-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Redis      *redis.Client
	Store      object.ObjectStore
	Dispatcher *notify.Dispatcher
	Scheduler  *jobs.ExpiryScheduler

	UsersService        *users.Service
	CompaniesService    *companies.Service
	JobsService         *jobs.Service
	ProfilesService     *profiles.Service
	ApplicationsService *applications.Service
	DocumentsService    *documents.Service
}

// Build prepares shared dependencies and wires routes. The expiry scheduler is
// built but not started; long-running processes call Scheduler.Start.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.JobExpirySchedule) == "" {
		cfg.JobExpirySchedule = "@every 1h"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sender, err := buildSender(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Redis:      redisClient,
		Store:      store,
		Dispatcher: notify.NewDispatcher(sender),
	}

	deps, err := buildServices(ctx, app)
	if err != nil {
		return nil, err
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: redis unavailable; continuing without it: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildSender(ctx context.Context, cfg config.Config) (notify.Sender, error) {
	switch cfg.NotifySender {
	case "queue":
		client, err := queue.NewSQSClient(ctx, cfg.NotifyQueueURL, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return notify.NewQueueSender(client), nil
	case "smtp":
		return notify.DeliverySender(cfg)
	default:
		return notify.LogSender{}, nil
	}
}

func buildServices(ctx context.Context, app *App) (server.RouterDeps, error) {
	var (
		userRepo        users.Repo
		companyRepo     companies.Repo
		jobRepo         jobs.Repo
		profileRepo     profiles.Repo
		applicationRepo applications.Repo
		docRepo         documents.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		companyRepo = &companies.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		profileRepo = &profiles.PGRepo{DB: app.DB}
		applicationRepo = &applications.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		companyRepo = companies.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		profileRepo = profiles.NewMemoryRepo()
		applicationRepo = applications.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
	}

	cfg := app.Config
	userSvc := users.NewService(userRepo, cfg.AdminEmails)
	companySvc := companies.NewService(companyRepo, userSvc, app.Dispatcher, cfg.AppBaseURL)
	jobSvc := jobs.NewService(jobRepo, companySvc)
	profileSvc := profiles.NewService(profileRepo)

	var publisher events.Publisher = events.Nop{}
	if app.Redis != nil {
		publisher = events.NewRedisPublisher(app.Redis)
	}
	applicationSvc := applications.NewService(applicationRepo, jobSvc, profileSvc, app.Dispatcher, publisher, cfg.NotificationEmail)
	docSvc := documents.NewService(app.Store, docRepo, cfg.ObjectStoreType)

	scheduler, err := jobs.NewExpiryScheduler(jobSvc, cfg.JobExpirySchedule)
	if err != nil {
		return server.RouterDeps{}, err
	}

	var uploadsHandler *uploads.Handler
	if strings.TrimSpace(cfg.UploadsBucket) != "" {
		uploadsHandler, err = uploads.NewHandler(ctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.UploadsPrefix)
		if err != nil {
			return server.RouterDeps{}, err
		}
	}

	var (
		redisLimiter *middleware.RedisLimiter
		oauthStates  googleauth.StateStore
	)
	if app.Redis != nil {
		redisLimiter = middleware.NewRedisLimiter(app.Redis)
		oauthStates = googleauth.NewRedisStates(app.Redis)
	}

	app.UsersService = userSvc
	app.CompaniesService = companySvc
	app.JobsService = jobSvc
	app.ProfilesService = profileSvc
	app.ApplicationsService = applicationSvc
	app.DocumentsService = docSvc
	app.Scheduler = scheduler

	return server.RouterDeps{
		Config:             cfg,
		Health:             health.NewService(app.DB, health.RedisPinger(app.Redis)),
		UserHandler:        users.NewHandler(userSvc),
		GoogleAuth:         googleauth.NewGoogleService(userSvc, googleauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			UIRedirect:   cfg.UIRedirectURL,
		}, oauthStates),
		CompanyHandler:     companies.NewHandler(companySvc),
		JobHandler:         jobs.NewHandler(jobSvc),
		ProfileHandler:     profiles.NewHandler(profileSvc),
		ApplicationHandler: applications.NewHandler(applicationSvc),
		DocumentHandler:    documents.NewHandler(docSvc),
		UploadsHandler:     uploadsHandler,
		RedisLimiter:       redisLimiter,
		RateLimiter:        middleware.NewRateLimiter(nil),
	}, nil
}
