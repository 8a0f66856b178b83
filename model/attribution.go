package model

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// AttributionTTL - how long a captured referral code stays attributed to a visitor
const AttributionTTL = 30 * 24 * time.Hour

// CampaignTags - optional UTM style tags captured together with the referral code
type CampaignTags struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Content  string `json:"content,omitempty"`
}

func (tags CampaignTags) Empty() bool {
	return tags == CampaignTags{}
}

// ReferralAttribution structure
//
// Ephemeral last-touch record of which referral code a visitor arrived with.
// At most one active attribution per visitor fingerprint. A sticky
// attribution survives later visits with a different code.
type ReferralAttribution struct {
	ReferralCode string       `json:"referral_code"`
	Fingerprint  string       `json:"fingerprint"`
	Tags         CampaignTags `json:"tags,omitempty"`
	Sticky       bool         `json:"sticky,omitempty"`
	CapturedAt   time.Time    `json:"captured_at"`
}

// FromBinary loads an attribution from its stored form
func (attribution *ReferralAttribution) FromBinary(msg []byte) error {
	return jsoniter.Unmarshal(msg, attribution)
}

// ToBinary converts an attribution to its stored form
func (attribution *ReferralAttribution) ToBinary() ([]byte, error) {
	return jsoniter.Marshal(attribution)
}

func (attribution *ReferralAttribution) Expired(now time.Time) bool {
	return now.Sub(attribution.CapturedAt) > AttributionTTL
}
