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

	"medexpenses/internal/config"
	"medexpenses/internal/logger"
	"medexpenses/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("ui", "development")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init("ui", cfg.Env)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	api := ui.NewAPIClient(cfg.APIBaseURL, 15*time.Second)
	router, err := ui.NewRouter(ui.NewHandler(api, !cfg.IsDev()))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build UI")
	}

	server := &http.Server{
		Addr:         ":" + cfg.UIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.UIPort).Str("api", cfg.APIBaseURL).Msg("UI server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start UI server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during UI server shutdown")
	}
	log.Info().Msg("UI server stopped")
}
