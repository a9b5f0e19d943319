// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildahub/internal/config"
	"guildahub/internal/infra/auth"
	pg "guildahub/internal/infra/db/postgres"
	"guildahub/internal/infra/logging"
	"guildahub/internal/infra/lookup"
	"guildahub/internal/infra/metrics"
	mp "guildahub/internal/infra/payment"
	red "guildahub/internal/infra/redis"
	"guildahub/internal/infra/sched"
	"guildahub/internal/infra/web"
	"guildahub/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	cooldowns := red.NewCooldownStore(redisClient)
	sessionCache := red.NewSessionCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	requestRepo := pg.NewPaymentRequestRepo(pool)
	guildRepo := pg.NewGuildConfigRepo(pool)
	guildProfileRepo := pg.NewGuildProfileRepo(pool)
	userRepo := pg.NewUserProfileRepo(pool)
	operatorRepo := pg.NewOperatorRepo(pool)

	// ---- Adapters ----
	gateway, err := mp.NewMercadoPagoGateway(cfg.Payment.MercadoPago.AccessToken, cfg.Payment.MercadoPago.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("mercadopago gateway")
	}
	verifier := auth.NewJWTVerifier(cfg.Auth.HMACSecret, cfg.Auth.TTL)
	nickLookup := lookup.NewMitsuriLookup(cfg.Lookup.Origin, cfg.Lookup.APIKey)

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(requestRepo, userRepo, gateway, rateLimiter, cooldowns,
		cfg.Payment.MercadoPago.NotificationURL, logger)
	statusUC := usecase.NewStatusUseCase(requestRepo, operatorRepo, gateway, logger)
	webhookUC := usecase.NewWebhookUseCase(requestRepo, guildRepo, guildProfileRepo, userRepo, gateway, logger)
	sessionUC := usecase.NewSessionUseCase(userRepo, guildRepo, guildProfileRepo, sessionCache, logger)
	signupUC := usecase.NewSignupUseCase(userRepo, guildRepo, guildProfileRepo, logger)

	// ---- HTTP server ----
	srv := web.NewServer(paymentUC, statusUC, webhookUC, sessionUC, signupUC, nickLookup, verifier, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Entitlement sweep ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryCheckEvery, guildRepo, guildProfileRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
