package model

import (
	"math/rand"
	"regexp"
	"time"
)

// GeneratedFile structure
type GeneratedFile struct {
	Type     string `json:"filetype"`
	DataType string `json:"datatype"`
	Data     []byte `json:"data"`
}

// PagingMeta structure
type PagingMeta struct {
	Page   int                    `json:"page"`
	Count  int64                  `json:"count"`
	Limit  int                    `json:"limit"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

var referralCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// ReferralCodeLength - size of every code issued here. Validation accepts a
// wider range so codes imported from earlier campaigns keep resolving.
const ReferralCodeLength = 8

var referralCodePattern = regexp.MustCompile("^[A-Z0-9]{6,12}$")

// NewReferralCode generates a new uppercase alphanumeric referral code
func NewReferralCode() string {
	rand.Seed(time.Now().UnixNano())
	b := make([]rune, ReferralCodeLength)
	for i := range b {
		b[i] = referralCodeAlphabet[rand.Intn(len(referralCodeAlphabet))]
	}
	return string(b)
}

// ValidReferralCode checks the fixed uppercase alphanumeric format
func ValidReferralCode(code string) bool {
	return referralCodePattern.MatchString(code)
}
