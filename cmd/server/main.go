package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"surveyml/internal"
	"surveyml/internal/config"
	"surveyml/internal/container"
	"surveyml/ui"
)

func main() {
	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.GinMode)

	c, err := container.New(cfg)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer c.Close()

	server := ui.NewServer(c.Pipeline, c.Source, ui.SessionConfig{
		MaxSessions: cfg.Server.MaxSessions,
		TTL:         cfg.Server.SessionTTL,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting survey dashboard API on http://localhost:%s (source: %s, tokenizer: %s)",
			cfg.Server.Port, cfg.Source.Kind, c.Tokenizer.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
