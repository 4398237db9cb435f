// cmd/copilot-api/main.go
package main

import (
	"context"

	"go.uber.org/zap"

	"support-copilot/internal/app"
	"support-copilot/internal/common/config"
	"support-copilot/internal/common/observability"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/pipeline"
	transport "support-copilot/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog, _ := app.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, log := app.NewLogger(cfg.Logging)
	defer zapLog.Sync()

	log = log.With(map[string]interface{}{"service": "copilot-api"})
	log.Info("starting copilot API", map[string]interface{}{
		"environment": cfg.App.Environment,
		"model":       cfg.OpenAI.Model,
		"configured":  cfg.OpenAI.APIKey != "",
	})

	obs := observability.New("copilot-api")
	defer obs.Shutdown()

	ctx := context.Background()

	limiter, closeLimiter, err := app.NewLimiter(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("rate limiter init failed", zap.Error(err))
	}
	defer closeLimiter()

	generator := generation.NewGenerator(app.GenerationConfig(cfg), log)
	p := pipeline.New(generator, log, obs)

	opts, err := app.ServerOptions(cfg.Server)
	if err != nil {
		zapLog.Fatal("server options invalid", zap.Error(err))
	}

	e := transport.NewAPIServer(p, limiter, log, opts)
	if err := app.Serve(ctx, e, cfg.Server.Address(), cfg.Server, log); err != nil {
		log.Error("copilot API stopped with error", map[string]interface{}{"error": err})
	}
}
