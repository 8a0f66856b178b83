package server

import (
	"fmt"
	"net/http"
	"net/http/pprof"

	limit "github.com/bu/gin-access-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/actions"
	"gitlab.com/vendalink-commerce/affiliate_api/logger"
)

func (srv *server) ListenToRequests() {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("1 => HTTP Listen to requests - stopped")

	a := srv.actions

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "PUT", "POST", "DELETE", "PATCH", "OPTIONS"}

	r.Use(cors.New(corsConfig)) // Allow requests from anywhere
	r.Use(gin.Recovery())       // Recovery middleware recovers from any panics and writes a 500 if there was one.

	r.Use(logger.SetLogger())

	// setup all routes
	{
		r.GET("/ping", actions.Ping)
		r.GET("/track", a.RateLimit(), a.Track)
	}

	{
		r.POST("/affiliates", a.RateLimit(), a.RegisterAffiliate)
		r.GET("/affiliates/top", a.GetTopAffiliates)
		r.GET("/referrals/:affiliate_id", a.GetReferrals)
		r.GET("/referrals/:affiliate_id/summary", a.GetNetworkSummary)
		r.GET("/commissions/:affiliate_id", a.GetCommissions)
		r.GET("/commissions/:affiliate_id/export", a.ExportCommissions)
	}

	{
		r.POST("/checkout", a.RateLimit(), a.Checkout)
		r.POST("/webhooks/asaas", a.AsaasWebhook)
	}

	// polling is an internal fallback for delayed webhooks, not a public surface
	internal := r.Group("/payments")
	{
		internal.Use(limit.CIDR(srv.config.Server.API.InternalCID))

		internal.POST("/:payment_id/poll", a.PollPaymentStatus)
	}

	admin := r.Group("/admin")
	{
		limit.TrustedHeaderField = "X-Forwarded-For"
		admin.Use(limit.CIDR(srv.config.Server.API.InternalCID))

		admin.POST("/affiliates/:affiliate_id/reparent", a.ReparentAffiliate)
		admin.POST("/network/rebuild", a.RebuildNetworkEdges)
	}

	debug := r.Group("/debug")
	{
		debug.Use(limit.CIDR(srv.config.Server.API.InternalCID))

		debug.GET("/pprof/:name", func(context *gin.Context) {
			pprof.Handler(context.Param("name")).ServeHTTP(context.Writer, context.Request)
		})
	}

	srv.HTTP = &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.config.Server.API.Port),
		Handler: r,
	}

	srv.HTTP.SetKeepAlivesEnabled(srv.config.Server.API.KeepAlive)

	port := srv.config.Server.API.Port
	httpServer := srv.HTTP
	if err := httpServer.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Error().Err(err).Str("section", "server").Str("action", "ListenToRequests").Msgf("Unable to listen %d port", port)
		}
	}
}
