// Command apiutils runs the configuration and authentication API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/origon-labs/apiutils/config"
	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/mongo"
	"github.com/origon-labs/apiutils/observability"
	"github.com/origon-labs/apiutils/routes"
	"github.com/origon-labs/apiutils/server"
	"github.com/origon-labs/apiutils/server/endpoint"
	"github.com/origon-labs/apiutils/token"
	"github.com/origon-labs/apiutils/util"
	"github.com/origon-labs/apiutils/version"
)

const serviceName = "apiutils"

func main() {
	logger.Init(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
		ServiceName: serviceName,
	})
	log := logger.WithComponent("main")

	cfg, err := config.New()
	if err != nil {
		log.Fatal("Configuration invalid", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Starting "+serviceName, map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Env(),
		"port":        cfg.Port(),
		"built_at":    cfg.BuildStamp(),
		"mongo":       util.MaskSecret(cfg.MongoURI(), 10),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requestMetrics, authMetrics := initObservability(ctx, cfg, log)

	// The catalogs are best-effort: the config endpoint answers with empty
	// lists when Mongo is unreachable at startup.
	var catalog routes.CatalogReader
	var checker endpoint.HealthChecker
	io, err := mongo.Connect(ctx, mongo.FromAppConfig(cfg))
	if err != nil {
		log.Warn("Mongo unavailable, catalogs disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		catalog = io
		checker = func(ctx context.Context) []observability.Health {
			return []observability.Health{io.CheckHealth(ctx)}
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := io.Disconnect(disconnectCtx); err != nil {
				log.Warn("Mongo disconnect failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	tokens := token.NewService(cfg)

	srv := server.New(server.FromAppConfig(cfg), logger.GetGlobalLogger())
	srv.ApplyDefaults(serviceName, requestMetrics, checker)
	routes.Register(srv.GinEngine(), routes.Deps{
		Config:      cfg,
		Tokens:      tokens,
		Catalog:     catalog,
		AuthMetrics: authMetrics,
	})

	if err := srv.Start(ctx); err != nil {
		log.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// initObservability wires the OTLP meter and tracer when an exporter endpoint
// is configured. Without one, metrics are nil and every recorder no-ops.
func initObservability(ctx context.Context, cfg *config.Config, log *logger.Logger) (*observability.RequestMetrics, *observability.AuthMetrics) {
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		return nil, nil
	}

	meterCfg := observability.DefaultMeterConfig(serviceName)
	meterCfg.Endpoint = otlpEndpoint
	meterCfg.Environment = cfg.Env()
	meterCfg.ServiceVersion = version.GetShortVersion()
	if _, err := observability.InitMeter(ctx, &meterCfg); err != nil {
		log.Warn("Meter init failed, metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	tracerCfg := observability.DefaultTracerConfig(serviceName)
	tracerCfg.Endpoint = otlpEndpoint
	tracerCfg.Environment = cfg.Env()
	tracerCfg.ServiceVersion = version.GetShortVersion()
	if _, err := observability.InitTracer(ctx, tracerCfg); err != nil {
		log.Warn("Tracer init failed, tracing disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}

	meter := observability.Meter(serviceName)
	requestMetrics, err := observability.NewRequestMetrics(meter)
	if err != nil {
		log.Warn("Request metrics unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	authMetrics, err := observability.NewAuthMetrics(meter)
	if err != nil {
		log.Warn("Auth metrics unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return requestMetrics, authMetrics
}
