package model

import "time"

// ReferralListEntry - one direct referral with its downline stats. Emails are
// masked before leaving the API.
type ReferralListEntry struct {
	Email        string    `json:"email"`
	RegisterDate time.Time `json:"register_date"`
	Status       string    `json:"status"`
	L1Earnings   int64     `json:"l1_earnings"`
	L2Users      int64     `json:"l2_users"`
	L3Users      int64     `json:"l3_users"`
}

// ReferralListResponse structure
type ReferralListResponse struct {
	Data []ReferralListEntry `json:"data"`
	Meta PagingMeta          `json:"meta"`
}

// NetworkSummary - per level counts and settled earnings for one affiliate
type NetworkSummary struct {
	AffiliateID    uint64 `json:"affiliate_id"`
	Level1Users    int64  `json:"level1_users"`
	Level2Users    int64  `json:"level2_users"`
	Level3Users    int64  `json:"level3_users"`
	Level1Earnings int64  `json:"level1_earnings"`
	Level2Earnings int64  `json:"level2_earnings"`
	Level3Earnings int64  `json:"level3_earnings"`
	TotalEarnings  int64  `json:"total_earnings"`
}

// CommissionListResponse structure
type CommissionListResponse struct {
	Data []Commission `json:"data"`
	Meta PagingMeta   `json:"meta"`
}

// TopAffiliates - leaderboard row, emails masked
type TopAffiliates struct {
	Email         string    `json:"email"`
	Level1Invited int64     `json:"level1_invited"`
	CreatedAt     time.Time `json:"created_at"`
}
