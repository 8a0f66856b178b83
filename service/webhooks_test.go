package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

func refundEvent(processorPaymentID string) *asaas.WebhookEvent {
	return &asaas.WebhookEvent{
		Event:   "PAYMENT_REFUNDED",
		Payment: asaas.Payment{ID: processorPaymentID, Status: asaas.PaymentStatusRefunded},
	}
}

func TestWebhookRefundsConfirmedPayment(t *testing.T) {
	service, mock := setupService()

	Convey("Given a refund webhook for a settled payment", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "confirmed")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		commissionRows := sqlmock.NewRows([]string{"id", "order_id", "beneficiary_id", "beneficiary_type", "level", "amount_cents", "status", "correlation_id"}).
			AddRow(1, 5, 9001, "house", 0, 49350, "pending", "corr-7").
			AddRow(2, 5, 9002, "house", 0, 49350, "pending", "corr-7")
		mock.
			ExpectQuery(`SELECT * FROM "commissions" WHERE order_id = $1`).
			WithArgs(uint64(5)).
			WillReturnRows(commissionRows)

		mock.ExpectBegin()
		insertSQL := `INSERT INTO "commissions" ("order_id","beneficiary_id","beneficiary_type","level","amount_cents","status","correlation_id","created_at") VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING "id"`
		mock.
			ExpectQuery(insertSQL).
			WithArgs(uint64(5), uint64(9001), "house", 0, int64(-49350), "cancelled", "corr-7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.
			ExpectQuery(insertSQL).
			WithArgs(uint64(5), uint64(9002), "house", 0, int64(-49350), "cancelled", "corr-7", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.
			ExpectExec(`UPDATE "payments" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("refunded", sqlmock.AnyArg(), uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.
			ExpectExec(`UPDATE "orders" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("cancelled", sqlmock.AnyArg(), uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		Convey("The payment ends refunded with compensating commission rows", func() {
			err := service.ProcessWebhookEvent(context.Background(), refundEvent("pay_123"))
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestWebhookRefundRedelivery(t *testing.T) {
	service, mock := setupService()

	Convey("Given the refund was already applied", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "refunded")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		Convey("A redelivered refund webhook is acked without touching anything", func() {
			err := service.ProcessWebhookEvent(context.Background(), refundEvent("pay_123"))
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestWebhookFailsUnconfirmedPayment(t *testing.T) {
	service, mock := setupService()

	Convey("Given an overdue webhook for a processing payment", t, func() {
		paymentRows := sqlmock.NewRows([]string{"id", "order_id", "processor_payment_id", "correlation_id", "amount_cents", "status"}).
			AddRow(7, 5, "pay_123", "corr-7", 329000, "processing")
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_123").
			WillReturnRows(paymentRows)

		mock.ExpectBegin()
		mock.
			ExpectExec(`UPDATE "payments" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("failed", sqlmock.AnyArg(), uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.
			ExpectExec(`UPDATE "orders" SET "status"=$1,"updated_at"=$2 WHERE id = $3`).
			WithArgs("cancelled", sqlmock.AnyArg(), uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		Convey("The payment fails without any commission rows", func() {
			event := &asaas.WebhookEvent{
				Event:   "PAYMENT_OVERDUE",
				Payment: asaas.Payment{ID: "pay_123", Status: asaas.PaymentStatusOverdue},
			}
			err := service.ProcessWebhookEvent(context.Background(), event)
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestWebhookUnknownPayment(t *testing.T) {
	service, mock := setupService()

	Convey("Given a refund webhook for a payment this system never created", t, func() {
		mock.
			ExpectQuery(`SELECT * FROM "payments" WHERE processor_payment_id = $1`).
			WithArgs("pay_ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		Convey("The event is acked so the processor stops redelivering", func() {
			err := service.ProcessWebhookEvent(context.Background(), refundEvent("pay_ghost"))
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
