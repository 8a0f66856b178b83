package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

// CronCleanupAttributions godoc
func CronCleanupAttributions(svc *service.Service) {
	removed, err := svc.Attribution().CleanupExpired()
	if err != nil {
		log.Error().Err(err).Str("cron", "cleanup_attributions").Msg("Unable to clean up expired attributions")
		return
	}
	if removed > 0 {
		log.Info().Str("cron", "cleanup_attributions").Int("removed", removed).Msg("Expired attributions removed")
	}
}
