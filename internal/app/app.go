package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_engine_backend/internal/config"
	"quiz_engine_backend/internal/controller"
	"quiz_engine_backend/internal/repository"
	"quiz_engine_backend/internal/service"
	"quiz_engine_backend/pkg/database"
	"quiz_engine_backend/pkg/logger"
	"quiz_engine_backend/pkg/monitoring"
	"quiz_engine_backend/pkg/security"
	"quiz_engine_backend/pkg/tracing"

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
	stopBg   context.CancelFunc
}

type repositories struct {
	store     repository.KVStore
	locks     *repository.KeyMutex
	user      *repository.UserRepository
	question  *repository.QuestionRepository
	history   *repository.HistoryRepository
	analytics *repository.AnalyticsRepository
	profile   *repository.ProfileRepository
	streak    *repository.StreakRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	question    *service.QuestionService
	analytics   *service.AnalyticsService
	streak      *service.StreakService
	progression *service.ProgressionService
	achievement *service.AchievementService
	result      *service.ResultService
	user        *service.UserService
	bus         *service.EventBus
	statsHub    *service.StatsHub
}

type controllers struct {
	auth        *controller.AuthController
	quiz        *controller.QuizController
	analytics   *controller.AnalyticsController
	achievement *controller.AchievementController
	user        *controller.UserController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	var store repository.KVStore
	if cfg.Store.Backend == "mysql" {
		store = repository.NewMySQLKV(db)
	} else {
		store = repository.NewRedisKV(rdb)
	}
	locks := repository.NewKeyMutex()

	return &repositories{
		store:     store,
		locks:     locks,
		user:      repository.NewUserRepository(db),
		question:  repository.NewQuestionRepository(db),
		history:   repository.NewHistoryRepository(store, locks),
		analytics: repository.NewAnalyticsRepository(store, locks),
		profile:   repository.NewProfileRepository(store, locks),
		streak:    repository.NewStreakRepository(store, locks),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.question = service.NewQuestionService(repos.question)
	s.analytics = service.NewAnalyticsService(repos.analytics, repos.history)
	s.streak = service.NewStreakService(repos.streak)
	s.progression = service.NewProgressionService(repos.profile, s.streak, repos.user)
	s.achievement = service.NewAchievementService(repos.profile, repos.analytics, repos.user, s.streak, logger.Log)
	s.user = service.NewUserService(repos.user, repos.profile, s.streak)

	s.bus = service.NewEventBus()
	s.result = service.NewResultService(repos.history, repos.profile, s.analytics, s.progression, s.achievement, s.bus, logger.Log)

	s.statsHub = service.NewStatsHub(rdb)
	go s.statsHub.Run()
	s.bus.Register(s.statsHub.NotifyAnalyticsUpdated)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		quiz:        controller.NewQuizController(s.result, s.analytics, s.question),
		analytics:   controller.NewAnalyticsController(s.analytics, s.statsHub),
		achievement: controller.NewAchievementController(s.achievement),
		user:        controller.NewUserController(s.user, s.storage),
		health:      controller.NewHealthController(db, rdb),
	}
}

// ApplyConfig 热更新运行期可安全替换的配置项。认证中间件持有
// 配置指针，JWT 密钥轮换即时生效。
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.JWT = cfg.JWT
	a.Config.RateLimit = cfg.RateLimit
	logger.Log.Info("Config reloaded")
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周计数清零的定时任务。提交路径上的惰性清零
// 是权威逻辑，定时任务只兜底长期不活跃的档案。
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.user.ResetStaleWeeklyCounters(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
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

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quiz-engine", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, os.ModePerm)
		}
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	app.stopBg = cancel
	app.startBackgroundTasks(bgCtx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopBg != nil {
		a.stopBg()
	}
	if a.services != nil && a.services.statsHub != nil {
		a.services.statsHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
