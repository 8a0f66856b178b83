package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gitlab.com/vendalink-commerce/affiliate_api/cache/networktree"
	"gitlab.com/vendalink-commerce/affiliate_api/config"
	"gitlab.com/vendalink-commerce/affiliate_api/queries"
	"gitlab.com/vendalink-commerce/affiliate_api/service/commission"
	"gitlab.com/vendalink-commerce/affiliate_api/service/tree"
)

func setupDB() (*gorm.DB, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "settlement").Str("method", "setupDB").Logger()
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

func setupService() (*Service, sqlmock.Sqlmock) {
	networktree.Flush()
	db, mock := setupDB()
	repo := &queries.Repo{Conn: db, ConnReader: db}
	cfg := config.Config{}
	cfg.Referral = config.ReferralConfig{
		TotalRateBps:  3000,
		L1Bps:         1500,
		L2Bps:         300,
		L3Bps:         200,
		HouseBaseBps:  500,
		HouseAccountA: 9001,
		HouseAccountB: 9002,
	}
	return &Service{
		ctx:         context.TODO(),
		cfg:         cfg,
		repo:        repo,
		tree:        tree.Init(repo, context.TODO()),
		calc:        commission.NewCalculator(cfg.Referral),
		processor:   &fakeProcessor{},
		attribution: NewAttributionStore(newMemoryKV(), cfg.Attribution),
	}, mock
}

func TestSettleWritesCommissionRows(t *testing.T) {
	service, mock := setupService()

	Convey("Given a processing payment on an unattributed order", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "processing")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		orderRows := sqlmock.NewRows([]string{"id", "customer_id", "affiliate_id", "total_amount_cents", "status"}).
			AddRow(5, 100, nil, 329000, "pending")
		mock.
			ExpectQuery(`SELECT * FROM "orders" WHERE id = $1`).
			WithArgs(uint64(5)).
			WillReturnRows(orderRows)

		mock.ExpectBegin()
		insertSQL := `INSERT INTO "commissions" ("order_id","beneficiary_id","beneficiary_type","level","amount_cents","status","correlation_id","created_at") VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING "id"`
		mock.
			ExpectQuery(insertSQL).
			WithArgs(uint64(5), uint64(9001), "house", 0, int64(49350), "pending", "corr-7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.
			ExpectQuery(insertSQL).
			WithArgs(uint64(5), uint64(9002), "house", 0, int64(49350), "pending", "corr-7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.
			ExpectExec(`UPDATE "payments" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("confirmed", sqlmock.AnyArg(), uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.
			ExpectExec(`UPDATE "orders" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("confirmed", sqlmock.AnyArg(), uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		Convey("Settle confirms the payment and splits everything to the house accounts", func() {
			err := service.Settle(context.Background(), "pay_123", "webhook")
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestSettleIsIdempotent(t *testing.T) {
	service, mock := setupService()

	Convey("Given an already confirmed payment", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "confirmed")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		Convey("A second Settle is a no-op", func() {
			err := service.Settle(context.Background(), "pay_123", "poller")
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestSettleLosesRaceGracefully(t *testing.T) {
	service, mock := setupService()

	Convey("Given a concurrent settlement already wrote the commission rows", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "processing")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		orderRows := sqlmock.NewRows([]string{"id", "customer_id", "affiliate_id", "total_amount_cents", "status"}).
			AddRow(5, 100, nil, 329000, "pending")
		mock.
			ExpectQuery(`SELECT * FROM "orders" WHERE id = $1`).
			WithArgs(uint64(5)).
			WillReturnRows(orderRows)

		mock.ExpectBegin()
		mock.
			ExpectQuery(`INSERT INTO "commissions" ("order_id","beneficiary_id","beneficiary_type","level","amount_cents","status","correlation_id","created_at") VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING "id"`).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		Convey("The losing writer treats the unique violation as success", func() {
			err := service.Settle(context.Background(), "pay_123", "webhook")
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestSettleUnknownPayment(t *testing.T) {
	service, mock := setupService()

	Convey("Given a processor payment id with no local payment", t, func() {
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		Convey("Settle reports the payment as unknown", func() {
			err := service.Settle(context.Background(), "pay_ghost", "webhook")
			So(err, ShouldNotBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
