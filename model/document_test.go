package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDocument(t *testing.T) {
	Convey("Given CPF style identifiers", t, func() {
		Convey("it should accept valid documents in any formatting", func() {
			for _, raw := range []string{"529.982.247-25", "52998224725", "529-982-247.25"} {
				document, err := ParseDocument(raw)
				So(err, ShouldBeNil)
				So(document.Kind, ShouldEqual, DocumentKind_CPF)
				So(document.Format(), ShouldEqual, "529.982.247-25")
			}
		})
		Convey("it should reject bad check digits", func() {
			_, err := ParseDocument("529.982.247-35")
			So(err, ShouldEqual, ErrDocument_CheckDigits)
		})
		Convey("it should reject all repeated digits", func() {
			for _, raw := range []string{"111.111.111-11", "00000000000"} {
				_, err := ParseDocument(raw)
				So(err, ShouldEqual, ErrDocument_RepeatedDigits)
			}
		})
	})

	Convey("Given CNPJ style identifiers", t, func() {
		Convey("it should accept valid documents", func() {
			document, err := ParseDocument("11.222.333/0001-81")
			So(err, ShouldBeNil)
			So(document.Kind, ShouldEqual, DocumentKind_CNPJ)
			So(document.Format(), ShouldEqual, "11.222.333/0001-81")
		})
		Convey("it should reject bad check digits", func() {
			_, err := ParseDocument("11.222.333/0001-82")
			So(err, ShouldEqual, ErrDocument_CheckDigits)
		})
	})

	Convey("Given identifiers with the wrong length", t, func() {
		for _, raw := range []string{"", "1234", "123456789012", "123456789012345"} {
			_, err := ParseDocument(raw)
			So(err, ShouldEqual, ErrDocument_InvalidLength)
		}
	})
}

func TestFormatDocumentRoundTrip(t *testing.T) {
	Convey("Formatting is stable under parse+format round trips", t, func() {
		for _, raw := range []string{"52998224725", "529.982.247-25", "11222333000181"} {
			first, err := FormatDocument(raw)
			So(err, ShouldBeNil)
			second, err := FormatDocument(first)
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
		}
	})
}
