package model

import (
	"errors"
	"fmt"
	"time"
)

type AffiliateStatus string

const (
	AffiliateStatus_Pending   AffiliateStatus = "pending"
	AffiliateStatus_Active    AffiliateStatus = "active"
	AffiliateStatus_Suspended AffiliateStatus = "suspended"
	AffiliateStatus_Inactive  AffiliateStatus = "inactive"
)

var ErrAffiliate_InvalidStatus = errors.New("affiliate status is not valid")
var ErrAffiliate_InvalidReferralCode = errors.New("invalid referral code")
var ErrAffiliate_SelfReference = errors.New("affiliate can not refer itself")

// Affiliate structure
//
// The parent reference is set at most once, at registration time, by resolving
// the referral code the new affiliate signed up with. Administrative
// re-parenting goes through a dedicated service operation that also rebuilds
// the network_edges projection.
type Affiliate struct {
	ID                uint64          `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	FirstName         string          `gorm:"column:first_name" json:"first_name"`
	LastName          string          `gorm:"column:last_name" json:"last_name"`
	Email             string          `gorm:"column:email" json:"email"`
	Phone             string          `gorm:"column:phone" json:"phone"`
	Document          string          `gorm:"column:document" json:"document"`
	ReferralCode      string          `gorm:"column:referral_code" json:"referral_code"`
	ParentAffiliateID *uint64         `gorm:"column:parent_affiliate_id" json:"parent_affiliate_id"`
	Status            AffiliateStatus `gorm:"column:status" json:"status"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// NewAffiliate creates a new affiliate structure with a freshly issued referral code
func NewAffiliate(firstName, lastName, email, phone, document string, parentID *uint64) *Affiliate {
	return &Affiliate{
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		Phone:             phone,
		Document:          document,
		ReferralCode:      NewReferralCode(),
		ParentAffiliateID: parentID,
		Status:            AffiliateStatus_Pending,
	}
}

func (affiliate *Affiliate) FullName() string {
	return fmt.Sprintf("%s %s", affiliate.FirstName, affiliate.LastName)
}

// GetAffiliateStatusFromString -
func GetAffiliateStatusFromString(s string) (AffiliateStatus, error) {
	switch s {
	case "pending":
		return AffiliateStatus_Pending, nil
	case "active":
		return AffiliateStatus_Active, nil
	case "suspended":
		return AffiliateStatus_Suspended, nil
	case "inactive":
		return AffiliateStatus_Inactive, nil
	default:
		return AffiliateStatus_Pending, ErrAffiliate_InvalidStatus
	}
}
