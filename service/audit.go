package service

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

// EdgeAuditReport - result of one projection audit pass
type EdgeAuditReport struct {
	MissingRebuilt int `json:"missing_rebuilt"`
	OrphansRemoved int `json:"orphans_removed"`
}

// AuditNetworkEdges reconciles the edge projection against the live
// affiliates table: affiliates without an edge row get one rebuilt, edge rows
// without an affiliate are dropped.
func (service *Service) AuditNetworkEdges() (*EdgeAuditReport, error) {
	logger := log.With().Str("service", "audit").Str("method", "AuditNetworkEdges").Logger()
	report := &EdgeAuditReport{}

	missing := []model.Affiliate{}
	db := service.repo.ConnReader.
		Table("affiliates").
		Where("NOT EXISTS (SELECT 1 FROM network_edges WHERE network_edges.affiliate_id = affiliates.id)").
		Find(&missing)
	if db.Error != nil {
		return nil, db.Error
	}
	if len(missing) > 0 {
		tx := service.repo.Conn.Begin()
		for i := range missing {
			if err := service.tree.RebuildEdge(tx, &missing[i]); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		report.MissingRebuilt = len(missing)
	}

	orphans := service.repo.Conn.
		Where("NOT EXISTS (SELECT 1 FROM affiliates WHERE affiliates.id = network_edges.affiliate_id)").
		Delete(&model.NetworkEdge{})
	if orphans.Error != nil {
		return nil, orphans.Error
	}
	report.OrphansRemoved = int(orphans.RowsAffected)

	if report.MissingRebuilt > 0 || report.OrphansRemoved > 0 {
		logger.Warn().
			Int("missing_rebuilt", report.MissingRebuilt).
			Int("orphans_removed", report.OrphansRemoved).
			Msg("edge projection reconciled")
	}
	return report, nil
}
