package actions

import (
	"context"

	"gitlab.com/vendalink-commerce/affiliate_api/cache/ratelimit"
	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

// Actions structure
type Actions struct {
	ctx     context.Context
	cfg     config.Config
	service *service.Service
	limiter *ratelimit.Limiter
}

// NewActions constructor
func NewActions(cfg config.Config, srv *service.Service, limiter *ratelimit.Limiter, ctx context.Context) *Actions {
	return &Actions{
		ctx:     ctx,
		cfg:     cfg,
		service: srv,
		limiter: limiter,
	}
}
