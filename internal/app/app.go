package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/controller"
	"vunderkids_backend/internal/repository"
	"vunderkids_backend/internal/service"
	"vunderkids_backend/pkg/configwatcher"
	"vunderkids_backend/pkg/database"
	"vunderkids_backend/pkg/logger"
	"vunderkids_backend/pkg/monitoring"
	"vunderkids_backend/pkg/security"
	"vunderkids_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user         *repository.UserRepository
	content      *repository.ContentRepository
	progress     *repository.ProgressRepository
	level        *repository.LevelRepository
	subscription *repository.SubscriptionRepository
	olympiad     *repository.OlympiadRepository
}

type services struct {
	storage      *service.StorageService
	learner      *service.LearnerService
	content      *service.ContentService
	progress     *service.ProgressService
	aggregate    *service.AggregateService
	subscription *service.SubscriptionService
	olympiad     *service.OlympiadService
}

type controllers struct {
	content      *controller.ContentController
	question     *controller.QuestionController
	progress     *controller.ProgressController
	subscription *controller.SubscriptionController
	olympiad     *controller.OlympiadController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		content:      repository.NewContentRepository(db),
		progress:     repository.NewProgressRepository(db),
		level:        repository.NewLevelRepository(db),
		subscription: repository.NewSubscriptionRepository(db),
		olympiad:     repository.NewOlympiadRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.learner = service.NewLearnerService(repos.user)
	s.content = service.NewContentService(repos.content, s.storage)
	s.progress = service.NewProgressService(repos.progress, repos.content, repos.user, repos.level, cfg.Reward)
	s.aggregate = service.NewAggregateService(repos.progress, repos.content, repos.user, rdb, cfg.Reward)
	s.subscription = service.NewSubscriptionService(repos.subscription, repos.user, repos.progress, cfg.Reward)
	s.olympiad = service.NewOlympiadService(repos.olympiad)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		content:      controller.NewContentController(s.content, s.learner),
		question:     controller.NewQuestionController(s.progress, s.content, s.learner),
		progress:     controller.NewProgressController(s.aggregate, s.learner),
		subscription: controller.NewSubscriptionController(s.subscription, repos.user),
		olympiad:     controller.NewOlympiadController(s.olympiad, s.learner),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the hourly sweeps. Both are date-based and
// idempotent, so running more often than once a day is harmless.
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			if err := s.progress.SweepLapsedStreaks(); err != nil {
				logger.Log.Error("streak sweep error", zap.Error(err))
			}
			if err := s.subscription.SweepExpired(); err != nil {
				logger.Log.Error("subscription sweep error", zap.Error(err))
			}
		}
	}()
}

func (a *App) watchConfig(s *services) {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		logger.Log.Info("Config reloaded")
		a.Config.Reward = cfg.Reward
		s.progress.SetRewardConfig(cfg.Reward)
		s.aggregate.SetRewardConfig(cfg.Reward)
		s.subscription.SetRewardConfig(cfg.Reward)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("vunderkids-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, services, cfg)

	app.startBackgroundTasks(services)
	app.watchConfig(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
