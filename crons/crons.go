package crons

import (
	"github.com/robfig/cron"

	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(crons config.Crons, svc *service.Service) {
	cronService = cron.New()
	for id, schedule := range crons {
		callback := GetCronByID(id, svc)
		_ = cronService.AddFunc(schedule, callback)
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, svc *service.Service) func() {
	switch id {
	case "cleanup_attributions":
		return func() {
			CronCleanupAttributions(svc)
		}
	case "audit_network_edges":
		return func() {
			CronAuditNetworkEdges(svc)
		}
	}
	return (func() {})
}

// Close godoc
func Close() {
	if cronService != nil {
		cronService.Stop()
	}
}
