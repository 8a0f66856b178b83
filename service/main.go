package service

import (
	"context"

	"github.com/mediocregopher/radix/v3"
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/net/kafka"
	"gitlab.com/vendalink-commerce/affiliate_api/queries"
	"gitlab.com/vendalink-commerce/affiliate_api/service/commission"
	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
	"gitlab.com/vendalink-commerce/affiliate_api/service/tree"
)

// PaymentProcessor - the external processor surface the service depends on
type PaymentProcessor interface {
	FindCustomerByEmail(email string) (*asaas.Customer, error)
	CreateCustomer(customer asaas.Customer) (*asaas.Customer, error)
	CreatePayment(request asaas.CreatePaymentRequest) (*asaas.Payment, error)
	GetPayment(paymentID string) (*asaas.Payment, error)
}

// Service structure
type Service struct {
	ctx              context.Context
	cfg              config.Config
	repo             *queries.Repo
	tree             *tree.Tree
	calc             *commission.Calculator
	processor        PaymentProcessor
	attribution      *AttributionStore
	settlementEvents *kafka.Writer
}

// NewService constructor
func NewService(ctx context.Context, cfg config.Config, repo *queries.Repo, redisPool *radix.Pool) *Service {
	processor := asaas.Init(cfg.Asaas.ApiKey, cfg.Asaas.ApiUrl, cfg.Asaas.SandboxApiUrl, cfg.Asaas.SandboxMarker)

	var kv AttributionKV
	if redisPool != nil {
		kv = &redisKV{pool: redisPool}
	} else {
		log.Warn().Str("section", "service").Msg("No redis pool configured, attribution store runs in memory")
		kv = newMemoryKV()
	}

	return &Service{
		ctx:              ctx,
		cfg:              cfg,
		repo:             repo,
		tree:             tree.Init(repo, ctx),
		calc:             commission.NewCalculator(cfg.Referral),
		processor:        processor,
		attribution:      NewAttributionStore(kv, cfg.Attribution),
		settlementEvents: kafka.NewWriter(cfg.Kafka, cfg.Kafka.Topics.Settlements),
	}
}

// GetRepo - used by crons
func (service *Service) GetRepo() *queries.Repo {
	return service.repo
}

// Attribution - the attribution store bound to this service
func (service *Service) Attribution() *AttributionStore {
	return service.attribution
}

// Tree - the network tree engine bound to this service
func (service *Service) Tree() *tree.Tree {
	return service.tree
}

// Close releases service owned resources
func (service *Service) Close() {
	if err := service.settlementEvents.Close(); err != nil {
		log.Error().Err(err).Str("section", "service").Msg("Unable to close settlement event writer")
	}
}
