package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReferralCodes(t *testing.T) {
	Convey("Given freshly issued referral codes", t, func() {
		Convey("they have the issued length and validate", func() {
			for i := 0; i < 5; i++ {
				code := NewReferralCode()
				So(len(code), ShouldEqual, ReferralCodeLength)
				So(ValidReferralCode(code), ShouldBeTrue)
			}
		})
	})

	Convey("Given codes from outside this issuer", t, func() {
		Convey("shorter uppercase alphanumeric codes still resolve", func() {
			So(ValidReferralCode("ABC123"), ShouldBeTrue)
			So(ValidReferralCode("PROMO2026XYZ"), ShouldBeTrue)
		})
		Convey("anything else is rejected", func() {
			So(ValidReferralCode("abc123"), ShouldBeFalse)
			So(ValidReferralCode("AB12"), ShouldBeFalse)
			So(ValidReferralCode("ABC 123"), ShouldBeFalse)
			So(ValidReferralCode(""), ShouldBeFalse)
		})
	})
}
