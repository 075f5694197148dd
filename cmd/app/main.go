package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wargame_server/internal/config"
	"wargame_server/internal/http/handlers"
	"wargame_server/internal/http/middleware"
	"wargame_server/internal/logger"
	"wargame_server/internal/service"
	"wargame_server/internal/ws"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat == "json")
	log := logger.Get()

	service.InitJWT()

	games := service.NewGameService(cfg.MaxRoundsBeforeWinner, cfg.TimebankSeconds)
	hub := ws.NewHub()
	session := ws.NewPlayerSession(games, hub)
	wsHandler := ws.NewWSHandler(hub, session, cfg.AllowedOrigin)

	r := gin.Default()

	// CORS so the browser client can reach us from another domain
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, 0)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version, "activeGames": games.ActiveGameCount()})
	})
	r.POST("/auth/token", middleware.RateLimit(10, time.Minute), handlers.IssueToken)
	r.GET("/ws", middleware.RateLimit(30, time.Minute), wsHandler.HandleWS())

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version,
			"maxRounds", cfg.MaxRoundsBeforeWinner, "timebankSeconds", cfg.TimebankSeconds)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
