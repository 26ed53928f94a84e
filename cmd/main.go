package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend/cache"
	"backend/config"
	"backend/routes"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.Logger.Info("starting_application")

	metrics := utils.NewMetrics()

	config.InitDB()
	if err := config.Migrate(config.DB); err != nil {
		utils.Logger.Fatal("migration_failed", zap.Error(err))
	}

	cacheClient, err := cache.New(utils.Logger)
	if err != nil {
		utils.Logger.Fatal("cache_init_failed", zap.Error(err))
	}
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	gin.SetMode(gin.ReleaseMode)
	r := routes.SetupRouter(config.DB, cacheClient, metrics)

	startServer(r)
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
}
