package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/joblane/platform/config"
	"github.com/joblane/platform/internal/constants"
	"github.com/joblane/platform/internal/dto"
	"github.com/joblane/platform/internal/handler"
	"github.com/joblane/platform/internal/mailer"
	"github.com/joblane/platform/internal/middleware"
	"github.com/joblane/platform/internal/repository"
	"github.com/joblane/platform/internal/router"
	"github.com/joblane/platform/internal/service"
	"github.com/joblane/platform/pkg/database"
	"github.com/joblane/platform/pkg/health"
	"github.com/joblane/platform/pkg/logger"
	"github.com/joblane/platform/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// A missing signing secret or mail credential must stop the process
	// here, never surface as a per-request failure.
	if err := config.Validate(); err != nil {
		logger.GetLogger().Fatal("Invalid configuration", zap.Error(err))
	}

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db); err != nil {
		// Seed data may already exist
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
	} else {
		logger.GetLogger().Info("Database seeded successfully")
	}

	redisClient := redis.NewClient(redis.Config{
		Enabled:      config.Redis.Enabled,
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolTimeout:  config.Redis.PoolTimeout,
	}, logger.GetLogger())
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	userRepo := repository.NewUserRepository(db)

	hasher := service.NewPasswordHasher()
	tokenService := service.NewTokenService(config.Token)
	sessionStore := service.NewRefreshTokenStore(userRepo)
	verificationService := service.NewVerificationService(tokenService, redisClient)

	verificationMailer := mailer.New(config, logger.GetLogger())
	defer verificationMailer.Close()

	authService := service.NewAuthService(
		userRepo, hasher, tokenService, sessionStore, verificationService, verificationMailer)
	userService := service.NewUserService(userRepo, hasher)

	monitor := health.NewMonitor(30*time.Second, logger.GetLogger())
	monitor.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if redisClient.IsEnabled() {
		monitor.Register("redis", redisClient.Ping)
	}
	monitor.Start()
	defer monitor.Stop()

	secureCookies := config.App.Environment == constants.EnvProduction
	authHandler := handler.NewAuthHandler(authService, tokenService, secureCookies)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient, monitor)

	if err := dto.RegisterValidators(); err != nil {
		logger.GetLogger().Fatal("Failed to register validators", zap.Error(err))
	}

	jwtMiddleware := middleware.NewJWTMiddleware(tokenService)

	engine := router.NewRouter(
		authHandler,
		userHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: engine,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Forced shutdown", zap.Error(err))
	}
}
