package service

import (
	"strings"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

// GetTopAffiliates
func (service *Service) GetTopAffiliates() ([]model.TopAffiliates, error) {
	affiliates := make([]model.TopAffiliates, 0)
	limit := 10
	q := service.repo.ConnReader.
		Table("affiliates").
		Select("count(a1.id) as level1_invited, affiliates.created_at, CONCAT (LEFT(affiliates.email,3), '****', RIGHT(affiliates.email,3)) as email").
		Joins("inner join affiliates a1 on a1.parent_affiliate_id = affiliates.id").
		Order("count(a1.id) DESC").
		Group("affiliates.id").
		Limit(limit).
		Find(&affiliates)
	if q.Error != nil {
		return affiliates, q.Error
	}
	return affiliates, nil
}

// GetReferrals lists the direct referrals of an affiliate together with the
// size of each referral's own downline and the settled earnings they produced.
func (service *Service) GetReferrals(affiliateID uint64, limit, page int) (*model.ReferralListResponse, error) {
	data := []model.ReferralListEntry{}
	var rowCount int64 = 0

	db := service.repo.ConnReader.Table("affiliates a").
		Joins("left join affiliates a1 ON a1.parent_affiliate_id = a.id").
		Where("a.id = ?", affiliateID).
		Where("a1.id is not null")

	dbc := db.Select("count(*) as total").Row()
	_ = dbc.Scan(&rowCount)

	selectList := []string{
		"CONCAT (LEFT(a1.email,3), '****', RIGHT(a1.email,3)) as email",
		"a1.created_at as register_date",
		"a1.status as status",
		"coalesce(sum(c.amount_cents) filter (where c.status != 'cancelled'), 0)::bigint as l1_earnings",
		"count(distinct a2.id)::bigint as l2_users",
		"count(distinct a3.id)::bigint as l3_users",
	}
	db = db.
		Joins("left join affiliates a2 ON a2.parent_affiliate_id = a1.id").
		Joins("left join affiliates a3 ON a3.parent_affiliate_id = a2.id").
		Joins("left join orders o ON o.affiliate_id = a1.id").
		Joins("left join commissions c ON c.order_id = o.id AND c.beneficiary_id = a.id AND c.beneficiary_type = 'affiliate'").
		Group("a.id, a1.id").
		Select(strings.Join(selectList, ",")).
		Order("register_date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&data)
	if db.Error != nil {
		return nil, db.Error
	}

	response := model.ReferralListResponse{
		Data: data,
		Meta: model.PagingMeta{
			Page:   page,
			Count:  rowCount,
			Limit:  limit,
			Filter: make(map[string]interface{})},
	}
	return &response, db.Error
}

// GetNetworkSummary aggregates downline counts and settled earnings per level
// for one affiliate. Earnings come from the commission rows, not a recount of
// the orders, so reversals are already netted out.
func (service *Service) GetNetworkSummary(affiliateID uint64) (*model.NetworkSummary, error) {
	summary := model.NetworkSummary{AffiliateID: affiliateID}

	row := service.repo.ConnReader.Table("network_edges e").
		Select(
			"count(*) filter (where e.level = self.level + 1) as level1_users, " +
				"count(*) filter (where e.level = self.level + 2) as level2_users, " +
				"count(*) filter (where e.level = self.level + 3) as level3_users").
		Joins("join network_edges self ON self.affiliate_id = ?", affiliateID).
		Where("e.path LIKE self.path || '/%' AND e.level <= self.level + ?", model.MaxCommissionDepth).
		Row()
	if err := row.Scan(&summary.Level1Users, &summary.Level2Users, &summary.Level3Users); err != nil {
		return nil, err
	}

	earnings := []struct {
		Level model.CommissionLevel
		Total int64
	}{}
	db := service.repo.ConnReader.Table("commissions").
		Select("level, coalesce(sum(amount_cents), 0)::bigint as total").
		Where("beneficiary_id = ? AND beneficiary_type = 'affiliate' AND status != 'cancelled'", affiliateID).
		Group("level").
		Find(&earnings)
	if db.Error != nil {
		return nil, db.Error
	}
	for _, e := range earnings {
		switch e.Level {
		case model.CommissionLevel_1:
			summary.Level1Earnings = e.Total
		case model.CommissionLevel_2:
			summary.Level2Earnings = e.Total
		case model.CommissionLevel_3:
			summary.Level3Earnings = e.Total
		}
		summary.TotalEarnings += e.Total
	}
	return &summary, nil
}

// GetCommissions lists an affiliate's commission rows, newest first
func (service *Service) GetCommissions(beneficiaryID uint64, limit, page int) (*model.CommissionListResponse, error) {
	commissions := []model.Commission{}
	var rowCount int64 = 0

	q := service.repo.ConnReader.Table("commissions").
		Where("beneficiary_id = ?", beneficiaryID)
	dbc := q.Select("count(*) as total").Row()
	_ = dbc.Scan(&rowCount)

	db := service.repo.ConnReader.
		Where("beneficiary_id = ?", beneficiaryID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&commissions)
	if db.Error != nil {
		return nil, db.Error
	}

	response := model.CommissionListResponse{
		Data: commissions,
		Meta: model.PagingMeta{
			Page:   page,
			Count:  rowCount,
			Limit:  limit,
			Filter: make(map[string]interface{})},
	}
	return &response, nil
}
