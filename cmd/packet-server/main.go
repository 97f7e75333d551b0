// cmd/packet-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"welcome-packet-service/internal/audit"
	"welcome-packet-service/internal/auth"
	"welcome-packet-service/internal/common/aws"
	"welcome-packet-service/internal/common/config"
	"welcome-packet-service/internal/common/database"
	"welcome-packet-service/internal/common/logger"
	"welcome-packet-service/internal/common/observability"
	"welcome-packet-service/internal/hubspot"
	"welcome-packet-service/internal/notify"
	"welcome-packet-service/internal/packet"
	"welcome-packet-service/internal/web"
	"welcome-packet-service/internal/web/session"
	"welcome-packet-service/internal/workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting packet server...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	sessions := session.NewStore(redisClient, time.Duration(cfg.Session.TTLMinutes)*time.Minute)
	authenticator := auth.NewAuthenticator(cfg.Auth.Users)
	filler := packet.NewFiller(log)

	crmFactory := web.CRMFactory(func(apiKey string) workflow.CRM {
		return hubspot.NewClient(apiKey, cfg.HubSpot.BaseURL, time.Duration(cfg.HubSpot.Timeout)*time.Millisecond)
	})

	opts := web.Options{Obs: obs}

	// --- Init PostgreSQL audit log (optional) with retry ---
	if cfg.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		opts.Audit = audit.NewStore(pg.DB, log)
	}

	// --- Init SES mailer (optional) ---
	if cfg.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Email.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		opts.Mailer = notify.NewMailer(sesClient, cfg.Email.FromEmail, log)
		zapLog.Info("SES mailer initialized", zap.String("from", cfg.Email.FromEmail))
	}

	server := web.NewServer(cfg, log, sessions, authenticator, filler, crmFactory, opts)

	// --- Graceful Shutdown ---
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(runCtx); err != nil {
		zapLog.Fatal("server stopped with error", zap.Error(err))
	}

	zapLog.Info("Packet server stopped gracefully")
}
