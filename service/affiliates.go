package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

var ErrAffiliate_NotFound = errors.New("affiliate not found")
var ErrAffiliate_UnknownReferralCode = errors.New("unknown referral code")
var ErrAffiliate_InvalidPhone = errors.New("invalid phone number")
var ErrAffiliate_ReparentToDescendant = errors.New("can not re-parent an affiliate under its own descendant")

// RegisterAffiliateRequest structure
type RegisterAffiliateRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Document     string
	ReferralCode string // the code the new affiliate signed up with, optional
}

// RegisterAffiliate creates the affiliate together with its network edge
// projection row, in one transaction. The parent reference is resolved from
// the signup referral code and set exactly once.
func (service *Service) RegisterAffiliate(request RegisterAffiliateRequest) (*model.Affiliate, error) {
	logger := log.With().
		Str("service", "affiliates").
		Str("method", "RegisterAffiliate").
		Str("email", request.Email).
		Logger()

	document, err := model.ParseDocument(request.Document)
	if err != nil {
		return nil, err
	}

	phone, err := phonenumbers.Parse(request.Phone, "BR")
	if err != nil || !phonenumbers.IsValidNumber(phone) {
		return nil, ErrAffiliate_InvalidPhone
	}

	var parentID *uint64
	if request.ReferralCode != "" {
		code := strings.ToUpper(strings.TrimSpace(request.ReferralCode))
		if !model.ValidReferralCode(code) {
			return nil, model.ErrAffiliate_InvalidReferralCode
		}
		parent, err := service.GetAffiliateByReferralCode(code)
		if err != nil {
			return nil, err
		}
		parentID = &parent.ID
	}

	affiliate := model.NewAffiliate(
		request.FirstName,
		request.LastName,
		request.Email,
		phonenumbers.Format(phone, phonenumbers.E164),
		document.Digits,
		parentID,
	)

	tx := service.repo.Conn.Begin()
	if err := tx.Create(affiliate).Error; err != nil {
		tx.Rollback()
		logger.Error().Err(err).Msg("unable to create affiliate")
		return nil, err
	}
	if err := service.tree.RebuildEdge(tx, affiliate); err != nil {
		tx.Rollback()
		logger.Error().Err(err).Msg("unable to build network edge")
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error().Err(err).Msg("unable to commit transaction")
		return nil, err
	}

	return affiliate, nil
}

// GetAffiliateByID -
func (service *Service) GetAffiliateByID(affiliateID uint64) (*model.Affiliate, error) {
	affiliates := make([]model.Affiliate, 0, 1)
	if err := service.repo.ConnReader.Find(&affiliates, "id = ?", affiliateID).Error; err != nil {
		return nil, err
	}
	if len(affiliates) == 0 {
		return nil, ErrAffiliate_NotFound
	}
	return &affiliates[0], nil
}

// GetAffiliateByReferralCode -
func (service *Service) GetAffiliateByReferralCode(code string) (*model.Affiliate, error) {
	affiliates := make([]model.Affiliate, 0, 1)
	if err := service.repo.ConnReader.Find(&affiliates, "referral_code = ?", code).Error; err != nil {
		return nil, err
	}
	if len(affiliates) == 0 {
		return nil, ErrAffiliate_UnknownReferralCode
	}
	return &affiliates[0], nil
}

// ReparentAffiliate moves an affiliate under a new parent and rebuilds the
// projection of the whole subtree. Historical commissions are never
// recalculated; the change only affects orders settled after it.
func (service *Service) ReparentAffiliate(affiliateID uint64, newParentID *uint64) (*model.Affiliate, error) {
	logger := log.With().
		Str("service", "affiliates").
		Str("method", "ReparentAffiliate").
		Uint64("affiliate_id", affiliateID).
		Logger()

	affiliate, err := service.GetAffiliateByID(affiliateID)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == affiliateID {
			return nil, model.ErrAffiliate_SelfReference
		}
		parent, err := service.GetAffiliateByID(*newParentID)
		if err != nil {
			return nil, err
		}
		descendant, err := service.isDescendant(parent.ID, affiliateID)
		if err != nil {
			return nil, err
		}
		if descendant {
			return nil, ErrAffiliate_ReparentToDescendant
		}
	}

	tx := service.repo.Conn.Begin()
	affiliate.ParentAffiliateID = newParentID
	if err := tx.Model(&model.Affiliate{}).
		Where("id = ?", affiliateID).
		Update("parent_affiliate_id", newParentID).Error; err != nil {
		tx.Rollback()
		logger.Error().Err(err).Msg("unable to update parent reference")
		return nil, err
	}
	if err := service.tree.RebuildSubtree(tx, affiliate); err != nil {
		tx.Rollback()
		logger.Error().Err(err).Msg("unable to rebuild subtree projection")
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error().Err(err).Msg("unable to commit transaction")
		return nil, err
	}

	logger.Info().Msg("affiliate re-parented, future orders only")
	return affiliate, nil
}

// RebuildAllNetworkEdges re-derives every edge projection row from the live
// affiliates table. Used by the admin rebuild endpoint and the audit cron.
func (service *Service) RebuildAllNetworkEdges() error {
	affiliates := []model.Affiliate{}
	if err := service.repo.ConnReader.Order("id asc").Find(&affiliates).Error; err != nil {
		return err
	}
	tx := service.repo.Conn.Begin()
	for i := range affiliates {
		if err := service.tree.RebuildEdge(tx, &affiliates[i]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// isDescendant reports whether candidate sits below root anywhere in the
// tree. The full materialized path is checked, not just the commission depth.
func (service *Service) isDescendant(candidateID, rootID uint64) (bool, error) {
	edges := make([]model.NetworkEdge, 0, 1)
	if err := service.repo.ConnReader.Find(&edges, "affiliate_id = ?", candidateID).Error; err != nil {
		return false, err
	}
	if len(edges) == 0 {
		return false, nil
	}
	ids, err := model.ParsePath(edges[0].Path)
	if err != nil || len(ids) == 0 {
		return false, err
	}
	for _, id := range ids[:len(ids)-1] {
		if id == rootID {
			return true, nil
		}
	}
	return false, nil
}
