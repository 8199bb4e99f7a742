// Package main запускает HTTP-сервер витрины.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront/internal/config"
	"github.com/mmeshcher/storefront/internal/fulfillment"
	"github.com/mmeshcher/storefront/internal/handler"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/notify"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/service"
	"github.com/mmeshcher/storefront/internal/session"
	"github.com/mmeshcher/storefront/internal/shipping"
)

const notificationsTopic = "storefront-notifications"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	defer rdb.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		sugar.Fatalw("redis initialization error", "error", err.Error())
	}
	cancelPing()

	var payments service.PaymentGateway
	if cfg.PaymentGatewayAddress != "" {
		payments = payment.NewClient(cfg.PaymentGatewayAddress)
	} else {
		sugar.Warn("payment gateway is not configured, only cash on delivery will succeed")
	}

	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kn := notify.NewKafkaNotifier(logger, notificationsTopic, brokers...)
		defer kn.Close()
		notifiers = append(notifiers, kn)
	}

	svc := service.NewService(service.Deps{
		Catalog:  repo,
		Sessions: session.NewRedisStore(rdb, 0),
		Orders:   fulfillment.NewManager(repo),
		Payments: payments,
		Notifier: notifiers,
		Shipping: shipping.NewResolver(shipping.DefaultMethods),
		Logger:   logger,
	})

	sessions := middleware.NewSessionMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, logger, sessions)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
