package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medexpenses/database"
	"medexpenses/docs"
	"medexpenses/internal/cache"
	"medexpenses/internal/codec"
	"medexpenses/internal/config"
	"medexpenses/internal/controllers"
	"medexpenses/internal/logger"
	"medexpenses/internal/ml"
	"medexpenses/internal/repository"
	"medexpenses/internal/services"
	"medexpenses/routes"
)

// @title Medical Expenses API
// @version 1.0
// @description Patient records with encrypted personal fields, application users and a charges estimator.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("api", "development")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init("api", cfg.Env)

	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	c, err := codec.NewCodec(cfg.FernetKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid FERNET_KEY")
	}

	db, err := database.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.MigrateDatabase(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	database.MonitorDBConnections(ctx, db, time.Minute)

	var (
		resultCache ml.ResultCache
		cachePing   controllers.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, cfg.PredictionCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Prediction cache disabled")
		} else {
			defer redisClient.Close()
			resultCache = redisClient
			cachePing = func(ctx context.Context) error {
				_, err := redisClient.Status(ctx)
				return err
			}
			log.Info().Dur("ttl", cfg.PredictionCacheTTL).Msg("Prediction cache enabled")
		}
	}

	store := repository.NewStore(db)
	patientService := services.NewPatientService(store, c)
	userService := services.NewUserService(store, c)
	authService := services.NewAuthService(store, c, cfg.JWTSecretKey, cfg.JWTTTL)
	predictor := ml.NewPredictor(ml.NewModelLoader(cfg.ModelPath), resultCache)

	if cfg.JWTSecretKey == "" {
		log.Warn().Msg("JWT_SECRET_KEY not set, API routes are not guarded")
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.Controllers{
		Patients:   controllers.NewPatientController(patientService),
		Users:      controllers.NewUserController(userService, authService),
		Prediction: controllers.NewPredictionController(predictor),
		Health: controllers.NewHealthController(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, cachePing),
	}, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("docs", "http://localhost:"+cfg.Port+"/swagger/index.html").
			Msg("API server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("API server stopped")
}
