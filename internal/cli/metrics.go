package cli

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drft-io/drft/internal/executor"
	"github.com/drft-io/drft/internal/logging"
)

// startMetricsServer registers a fresh Prometheus registry and serves it
// on addr for the lifetime of the current apply/destroy. Errors from the
// listener are logged, not fatal: metrics are observability, not a
// behavioral dependency of the run they describe.
func startMetricsServer(addr string) *executor.Metrics {
	reg := prometheus.NewRegistry()
	metrics := executor.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server stopped", "err", err)
		}
	}()

	return metrics
}
