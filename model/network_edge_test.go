package model_test

import (
	"testing"

	"github.com/go-playground/assert/v2"
	. "github.com/smartystreets/goconvey/convey"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

func TestBuildAndParsePath(t *testing.T) {
	Convey("Given a chain of ancestor ids", t, func() {
		Convey("I should be able to materialize and parse the path back", func() {
			path := model.BuildPath([]uint64{10, 20, 30}, 40)
			assert.Equal(t, path, "10/20/30/40")

			ids, err := model.ParsePath(path)
			So(err, ShouldBeNil)
			assert.Equal(t, ids, []uint64{10, 20, 30, 40})
		})

		Convey("A root affiliate has a single segment path", func() {
			path := model.BuildPath(nil, 7)
			assert.Equal(t, path, "7")

			ids, err := model.ParsePath(path)
			So(err, ShouldBeNil)
			assert.Equal(t, ids, []uint64{7})
		})

		Convey("A corrupted path segment is rejected", func() {
			_, err := model.ParsePath("10/x/30")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestAncestorChain(t *testing.T) {
	Convey("Given an edge row with a deep path", t, func() {
		edge := model.NetworkEdge{AffiliateID: 40, Level: 4, Path: "10/20/30/40"}

		Convey("The chain holds the nearest ancestors first, commission depth only", func() {
			chain, err := edge.AncestorChain()
			So(err, ShouldBeNil)
			assert.Equal(t, chain, []model.ChainEntry{
				{AffiliateID: 30, Level: 1},
				{AffiliateID: 20, Level: 2},
				{AffiliateID: 10, Level: 3},
			})
		})
	})

	Convey("Given an edge row deeper than the commission depth", t, func() {
		edge := model.NetworkEdge{AffiliateID: 50, Level: 5, Path: "5/10/20/30/50"}

		Convey("Ancestors past the depth limit earn nothing and are cut off", func() {
			chain, err := edge.AncestorChain()
			So(err, ShouldBeNil)
			So(len(chain), ShouldEqual, model.MaxCommissionDepth)
			So(chain[0].AffiliateID, ShouldEqual, 30)
			So(chain[2].AffiliateID, ShouldEqual, 10)
		})
	})

	Convey("Given a root affiliate", t, func() {
		edge := model.NetworkEdge{AffiliateID: 7, Level: 1, Path: "7"}

		Convey("The chain is empty", func() {
			chain, err := edge.AncestorChain()
			So(err, ShouldBeNil)
			So(chain, ShouldBeEmpty)
		})
	})
}
