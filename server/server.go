package server

import (
	"net/http"
	"time"

	// import http profiling when the server profiling configuration is set
	_ "net/http/pprof"

	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/actions"
	"gitlab.com/vendalink-commerce/affiliate_api/cache/ratelimit"
	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/crons"
	"gitlab.com/vendalink-commerce/affiliate_api/featureflags"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/net/redis"
	"gitlab.com/vendalink-commerce/affiliate_api/queries"
	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config  config.Config
	actions *actions.Actions
	service *service.Service
	ctx     context.Context
	close   context.CancelFunc
	HTTP    *http.Server
}

// NewServer constructor
func NewServer(cfg config.Config) Server {
	ctx, close := context.WithCancel(context.Background())

	redisPool, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Warn().Str("section", "server").Err(err).Msg("Unable to connect to redis, attribution falls back to local memory")
		redisPool = nil
	}

	repo := queries.NewRepo(cfg.DatabaseCluster)
	dataServices := service.NewService(ctx, cfg, repo, redisPool)

	limiter := ratelimit.Init(redisPool, cfg.RateLimit.Requests, cfg.RateLimit.WindowSecs)
	apiActions := actions.NewActions(cfg, dataServices, limiter, ctx)

	if err := featureflags.Initialize(cfg.Unleash); err != nil {
		log.Warn().Str("section", "server").Err(err).Msg("Unable to initialize feature flags, all flags default to enabled")
	}

	crons.Start(cfg.Crons, dataServices)

	return &server{
		config:  cfg,
		service: dataServices,
		actions: apiActions,
		ctx:     ctx,
		close:   close,
	}
}

// Listen starts the http surface and blocks until a termination signal
func (srv *server) Listen() {
	go srv.ListenToRequests()
	go monitor.LoopProfilingServer(srv.config.Server.Monitoring)

	srv.stopOnSignal()
}

func (srv *server) stopOnSignal() {
	// listen for termination signals
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// define a timeout in which the graceful shutdown procedure should happen before forcing the shutdown
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	monitor.ShutdownServer()
	if err := srv.HTTP.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
	}

	crons.Close()
	srv.close()
	srv.service.Close()

	featureflags.Close()
	// make sure database connection is closed on program exit
	queries.Close()

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("state", "complete").Msg("All workers terminated")
}
