package tree

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gitlab.com/vendalink-commerce/affiliate_api/cache/networktree"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/queries"
)

func setupDB() (*gorm.DB, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "tree").Str("method", "setupDB").Logger()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		logger.Fatal().Msgf("can't create sqlmock: %s", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "postgres-mock",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Fatal().Msgf("can't open gorm connection: %s", err)
	}

	return gormDB, mock
}

func setupRepo() (*queries.Repo, sqlmock.Sqlmock) {
	db, mock := setupDB()
	return &queries.Repo{
		Conn:       db,
		ConnReader: db,
	}, mock
}

func TestGetAncestorChainFromEdges(t *testing.T) {
	networktree.Flush()
	r, mock := setupRepo()
	tr := Init(r, context.TODO())

	Convey("it should derive the chain from the denormalized edge row", t, func() {
		edgeRows := sqlmock.NewRows([]string{"id", "affiliate_id", "parent_id", "level", "path"}).
			AddRow(4, 40, 30, 4, "10/20/30/40")
		mock.
			ExpectQuery(`SELECT * FROM "network_edges" WHERE affiliate_id = $1`).
			WithArgs(uint64(40)).
			WillReturnRows(edgeRows)

		chain, err := tr.GetAncestorChain(40)
		So(err, ShouldBeNil)
		So(chain, ShouldResemble, []model.ChainEntry{
			{AffiliateID: 30, Level: 1},
			{AffiliateID: 20, Level: 2},
			{AffiliateID: 10, Level: 3},
		})
	})

	Convey("a second read is served from the in-process cache", t, func() {
		chain, err := tr.GetAncestorChain(40)
		So(err, ShouldBeNil)
		So(len(chain), ShouldEqual, 3)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestGetAncestorChainRootAffiliate(t *testing.T) {
	networktree.Flush()
	r, mock := setupRepo()
	tr := Init(r, context.TODO())

	Convey("an affiliate with no referrer yields an empty chain", t, func() {
		edgeRows := sqlmock.NewRows([]string{"id", "affiliate_id", "parent_id", "level", "path"}).
			AddRow(1, 10, nil, 1, "10")
		mock.
			ExpectQuery(`SELECT * FROM "network_edges" WHERE affiliate_id = $1`).
			WithArgs(uint64(10)).
			WillReturnRows(edgeRows)

		chain, err := tr.GetAncestorChain(10)
		So(err, ShouldBeNil)
		So(chain, ShouldBeEmpty)
	})
}

func TestGetAncestorChainFallback(t *testing.T) {
	networktree.Flush()
	r, mock := setupRepo()
	tr := Init(r, context.TODO())

	Convey("a missing edge row falls back to walking the live table", t, func() {
		mock.
			ExpectQuery(`SELECT * FROM "network_edges" WHERE affiliate_id = $1`).
			WithArgs(uint64(30)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "affiliate_id", "parent_id", "level", "path"}))

		affiliateColumns := []string{"id", "parent_affiliate_id", "referral_code", "status"}
		mock.
			ExpectQuery(`SELECT * FROM "affiliates" WHERE id = $1`).
			WithArgs(uint64(30)).
			WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(30, 20, "CODE0030", "active"))
		mock.
			ExpectQuery(`SELECT * FROM "affiliates" WHERE id = $1`).
			WithArgs(uint64(20)).
			WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(20, 10, "CODE0020", "active"))
		mock.
			ExpectQuery(`SELECT * FROM "affiliates" WHERE id = $1`).
			WithArgs(uint64(10)).
			WillReturnRows(sqlmock.NewRows(affiliateColumns).AddRow(10, nil, "CODE0010", "active"))

		chain, err := tr.GetAncestorChain(30)
		So(err, ShouldBeNil)
		So(chain, ShouldResemble, []model.ChainEntry{
			{AffiliateID: 20, Level: 1},
			{AffiliateID: 10, Level: 2},
		})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("the fallback result is not cached", t, func() {
		_, ok := networktree.GetChain(30)
		So(ok, ShouldBeFalse)
	})
}
