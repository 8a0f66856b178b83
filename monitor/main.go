package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config structure
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

var (
	// PaymentsCreated - processor charges issued, by billing type
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_api_payments_created_total",
		Help: "Number of processor charges created",
	}, []string{"billing_type"})

	// PaymentsConfirmed - payments that reached a terminal confirmed state, by path
	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_api_payments_confirmed_total",
		Help: "Number of payments confirmed, labelled by confirmation path",
	}, []string{"path"})

	// SettlementsTotal - settle() outcomes
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_api_settlements_total",
		Help: "Number of settlement attempts by result",
	}, []string{"result"})

	// PollAttempts - individual processor status checks issued by the poller
	PollAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_api_poll_attempts_total",
		Help: "Number of payment status poll attempts",
	})

	// WebhookDeliveries - processor webhook posts by validation outcome
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_api_webhook_deliveries_total",
		Help: "Number of processor webhook deliveries by outcome",
	}, []string{"outcome"})

	// AttributionCaptures - referral codes captured from tracking hits
	AttributionCaptures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_api_attribution_captures_total",
		Help: "Number of referral attributions captured",
	})

	// EdgeFallbacks - ancestor chain reads that had to walk the live table
	EdgeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "affiliate_api_network_edge_fallbacks_total",
		Help: "Number of ancestor chain resolutions served by the live table fallback",
	})
)

var monitoringServer *http.Server

// LoopProfilingServer starts the metrics and profiling endpoint when enabled
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	monitoringServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
	log.Info().Str("worker", "monitoring").Int("port", cfg.Port).Msg("Monitoring server - started")
	if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("worker", "monitoring").Msg("Monitoring server stopped unexpectedly")
	}
}

// ShutdownServer stops the monitoring endpoint
func ShutdownServer() {
	if monitoringServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = monitoringServer.Shutdown(ctx)
}
