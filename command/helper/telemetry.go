package helper

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// setupTelemetry installs the global metrics sink and serves it on addr.
// The returned function stops the server.
func setupTelemetry(addr string, logger hclog.Logger) (func() error, error) {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	promSink, err := prometheus.NewPrometheusSinkFrom(prometheus.PrometheusOpts{
		Name:       "bssc_evm_prometheus_sink",
		Expiration: 0,
	})
	if err != nil {
		return nil, err
	}

	metricsConf := metrics.DefaultConfig("bssc_evm")
	metricsConf.EnableHostname = false

	if _, err := metrics.NewGlobal(metricsConf, metrics.FanoutSink{
		inm, promSink,
	}); err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: time.Minute,
	}

	go func() {
		logger.Info("Prometheus server started", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(ctx)
	}, nil
}
