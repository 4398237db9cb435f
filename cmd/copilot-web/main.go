// cmd/copilot-web/main.go
package main

import (
	"context"

	"go.uber.org/zap"

	"support-copilot/internal/app"
	"support-copilot/internal/common/config"
	commonhttp "support-copilot/internal/common/http"
	"support-copilot/internal/common/observability"
	"support-copilot/internal/copilot/generation"
	"support-copilot/internal/copilot/pipeline"
	transport "support-copilot/internal/transport/http"
	"support-copilot/internal/transport/http/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog, _ := app.NewLogger(config.LoggingConfig{Level: "info", Format: "console"})
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, log := app.NewLogger(cfg.Logging)
	defer zapLog.Sync()

	log = log.With(map[string]interface{}{"service": "copilot-web"})

	obs := observability.New("copilot-web")
	defer obs.Shutdown()

	ctx := context.Background()

	var handler *web.Handler
	if cfg.Web.APIBase != "" {
		log.Info("forwarding drafts to API", map[string]interface{}{"apiBase": cfg.Web.APIBase})
		client := commonhttp.NewClient(config.GetDuration(cfg.Web.ProxyTimeout))
		handler = web.NewProxyHandler(cfg.Web.APIBase, client, log)
	} else {
		log.Info("no API base configured, drafting in-process", nil)
		generator := generation.NewGenerator(app.GenerationConfig(cfg), log)
		handler = web.NewLocalHandler(pipeline.New(generator, log, obs), log)
	}

	limiter, closeLimiter, err := app.NewLimiter(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("rate limiter init failed", zap.Error(err))
	}
	defer closeLimiter()

	opts, err := app.ServerOptions(cfg.Server)
	if err != nil {
		zapLog.Fatal("server options invalid", zap.Error(err))
	}

	e := transport.NewWebServer(handler, limiter, log, opts)
	if err := app.Serve(ctx, e, cfg.Web.Address(), cfg.Server, log); err != nil {
		log.Error("copilot web stopped with error", map[string]interface{}{"error": err})
	}
}
