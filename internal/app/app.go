// Package app holds the wiring shared by the copilot binaries: logger,
// generator, rate limiter and the HTTP serve loop with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"support-copilot/internal/common/config"
	"support-copilot/internal/common/database"
	"support-copilot/internal/common/logger"
	"support-copilot/internal/common/ratelimit"
	"support-copilot/internal/copilot/generation"
	transport "support-copilot/internal/transport/http"
)

// NewLogger builds the zap logger described by cfg.Logging.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, logger.Logger) {
	zapLog := logger.New(cfg.Level, cfg.Format, cfg.Output)
	return zapLog, logger.NewZapAdapter(zapLog)
}

// GenerationConfig maps the openai section onto the generator config.
func GenerationConfig(cfg *config.Config) *generation.Config {
	return &generation.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     config.GetDuration(cfg.OpenAI.Timeout),
		Mode:        cfg.App.Mode,
	}
}

// ServerOptions maps the server section onto listener options.
func ServerOptions(cfg config.ServerConfig) (transport.Options, error) {
	trusted, err := cfg.TrustedNetworks()
	if err != nil {
		return transport.Options{}, err
	}
	return transport.Options{BodyLimit: cfg.BodyLimit, TrustedProxies: trusted}, nil
}

// NewLimiter returns nil when rate limiting is disabled. The returned close
// function is never nil.
func NewLimiter(ctx context.Context, cfg *config.Config, log logger.Logger) (ratelimit.Limiter, func(), error) {
	noop := func() {}
	rl := cfg.RateLimit
	if !rl.Enabled {
		log.Info("rate limiting disabled", nil)
		return nil, noop, nil
	}

	if rl.Backend != config.RateLimitBackendRedis {
		log.Info("rate limiting enabled", map[string]interface{}{"limiter": rl.String()})
		return ratelimit.NewMemoryLimiter(rl.RequestsPerMinute, rl.Burst), noop, nil
	}

	var client *database.RedisClient
	err := retryWithBackoff(func() error {
		var err error
		client, err = database.NewRedis(ctx, cfg.Database.Redis)
		return err
	}, 5, time.Second, log, "Redis connection")
	if err != nil {
		return nil, noop, err
	}

	log.Info("rate limiting enabled", map[string]interface{}{
		"limiter": rl.String(),
		"redis":   cfg.Database.Redis.Address,
	})
	limiter := ratelimit.NewRedisLimiter(client.Client, rl.KeyPrefix, rl.RequestsPerMinute, rl.Burst)
	return limiter, func() { _ = client.Close() }, nil
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Serve runs e on addr until SIGINT/SIGTERM or ctx is done, then drains
// in-flight requests for up to cfg.ShutdownTimeout.
func Serve(ctx context.Context, e *echo.Echo, addr string, cfg config.ServerConfig, log logger.Logger) error {
	e.Server.ReadTimeout = config.GetDuration(cfg.ReadTimeout)
	e.Server.WriteTimeout = config.GetDuration(cfg.WriteTimeout)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", map[string]interface{}{"address": addr})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining requests", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.ShutdownTimeout))
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped gracefully", nil)
	return nil
}
