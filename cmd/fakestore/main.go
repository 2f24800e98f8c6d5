// Command fakestore serves the demo store API locally so shelf can run
// without network access. Point shelf at it with -api http://127.0.0.1:8099.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/fakestore"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		return run(ctx, lg, m, cfg)
	})
}

func run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	store := fakestore.New(
		fakestore.WithLogger(lg.Named("http")),
		fakestore.WithLatency(cfg.Latency),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		ReadHeaderTimeout: time.Second,
		Handler: otelhttp.NewHandler(store.Handler(), "fakestore",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
	}()

	lg.Info("Server listening",
		zap.String("addr", cfg.Addr),
		zap.String("user", fakestore.DemoUsername),
		zap.Int("products", len(fakestore.Fixtures())),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
