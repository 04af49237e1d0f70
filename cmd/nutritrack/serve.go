package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"nutritrack/config"
	"nutritrack/internal/auth"
	"nutritrack/internal/cache"
	"nutritrack/internal/db"
	"nutritrack/internal/export"
	"nutritrack/internal/gpt"
	"nutritrack/internal/notify"
	"nutritrack/internal/payment"
	"nutritrack/internal/server"
	"nutritrack/internal/service"
	"nutritrack/internal/storage"
	"nutritrack/internal/usda"
	"nutritrack/pkg/logger"
)

const dbConnectRetries = 5

func newServeCmd() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

// connectDB retries with a linear backoff while Postgres starts up.
func connectDB(cfg config.DBConfig, l *logger.Logger) (*db.PostgresDB, error) {
	var err error
	for i := 0; i < dbConnectRetries; i++ {
		var database *db.PostgresDB
		database, err = db.NewPostgresDB(cfg)
		if err == nil {
			return database, nil
		}
		l.Warnw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbConnectRetries, err)
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	gin.SetMode(cfg.Server.GinMode)
	l := logger.NewForMode(cfg.Server.GinMode)
	defer l.Sync()
	l.Info("Starting nutritrack...")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := connectDB(cfg.DB, l)
	if err != nil {
		return err
	}
	defer database.Close()

	if migrate {
		applied, err := database.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			l.Infow("Migrations applied", "versions", applied)
		}
	}

	c := cache.New(ctx, cfg.Redis, l)
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close()
	}

	translator, err := usda.NewTranslator()
	if err != nil {
		return err
	}
	fallback, err := usda.NewFallback()
	if err != nil {
		return err
	}

	deps := service.Deps{
		Store:          database,
		Tokens:         auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Cache:          c,
		Foods:          usda.NewClient(cfg.USDA, c, l),
		Translator:     translator,
		Fallback:       fallback,
		AI:             gpt.NewClientWithConfig(cfg.GPT),
		Renderer:       export.NewPDFRenderer(),
		Location:       loc,
		RequirePremium: cfg.Stripe.RequirePremium,
		Logger:         l,
	}
	if cfg.GPT.APIKey == "" {
		l.Warn("GPT API key is not configured, AI endpoints will answer 503")
	}

	var webhooks server.WebhookVerifier
	if cfg.Stripe.SecretKey != "" {
		stripeClient := payment.NewStripeClient(cfg.Stripe)
		deps.Checkout = stripeClient
		webhooks = stripeClient
	} else {
		l.Warn("Stripe is not configured, billing is disabled")
	}

	if cfg.S3.Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			l.Warnw("S3 unavailable, PDFs will be returned inline", "error", err)
		} else {
			deps.Uploader = uploader
		}
	}

	svc := service.New(deps)

	var telegramBot *notify.TelegramBot
	if cfg.Telegram.Token != "" {
		telegramBot, err = notify.NewTelegramBot(cfg.Telegram.Token, l)
		if err != nil {
			return err
		}
		if err := telegramBot.Start(ctx); err != nil {
			return err
		}
		go notify.NewScheduler(svc, telegramBot, l).Run(ctx)
	} else {
		l.Warn("Telegram token is not configured, reminders are disabled")
	}

	handler := server.NewHandler(svc, webhooks, l).WithHealthCheck(database)
	httpServer := server.NewServer(cfg.Server, handler.Router(cfg.Server), l)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	l.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop HTTP server first
	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}
	if telegramBot != nil {
		if err := telegramBot.Stop(shutdownCtx); err != nil {
			l.Errorw("Error during bot shutdown", "error", err)
		}
	}

	l.Info("Stopped")
	return nil
}
