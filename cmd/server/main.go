package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/examgate/examgate/application/usecase"
	"github.com/examgate/examgate/infrastructure/config"
	"github.com/examgate/examgate/infrastructure/http/handler"
	"github.com/examgate/examgate/infrastructure/http/middleware"
	"github.com/examgate/examgate/infrastructure/persistence/postgres"
	"github.com/examgate/examgate/infrastructure/service/clock"
	"github.com/examgate/examgate/infrastructure/service/jwt"
	"github.com/examgate/examgate/infrastructure/service/logger"
	"github.com/examgate/examgate/infrastructure/service/password"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "examgate-auth",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"access_token_ttl":  cfg.AccessTokenTTL.String(),
		"refresh_token_ttl": cfg.RefreshTokenTTL.String(),
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	systemClock := clock.NewSystemClock()

	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, systemClock)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(10)
	userRepo := postgres.NewUserRepository(db)

	authUseCase := usecase.NewAuthUseCase(
		userRepo,
		tokenService,
		passwordService,
		systemClock,
		structuredLogger,
		cfg.RefreshTokenTTL,
	)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	authHandler := handler.NewAuthHandler(authUseCase, authMiddleware)

	router := mux.NewRouter()
	router.Use(middleware.CorrelationID)
	authHandler.RegisterRoutes(router)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "HTTP server listening", map[string]interface{}{
			"addr": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Forced shutdown", err, nil)
	}
}
