package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

// CronAuditNetworkEdges godoc
func CronAuditNetworkEdges(svc *service.Service) {
	report, err := svc.AuditNetworkEdges()
	if err != nil {
		log.Error().Err(err).Str("cron", "audit_network_edges").Msg("Unable to audit network edges")
		return
	}
	if report.MissingRebuilt > 0 || report.OrphansRemoved > 0 {
		log.Warn().
			Str("cron", "audit_network_edges").
			Int("missing_rebuilt", report.MissingRebuilt).
			Int("orphans_removed", report.OrphansRemoved).
			Msg("Edge projection drifted from the live table")
	}
}
