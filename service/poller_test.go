package service

import (
	"context"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	. "github.com/smartystreets/goconvey/convey"

	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

type fakeProcessor struct {
	statuses []string // consumed one per GetPayment call, last repeats
	err      error
	calls    int
	charges  int
}

func (p *fakeProcessor) FindCustomerByEmail(email string) (*asaas.Customer, error) {
	return nil, nil
}

func (p *fakeProcessor) CreateCustomer(customer asaas.Customer) (*asaas.Customer, error) {
	return &customer, nil
}

func (p *fakeProcessor) CreatePayment(request asaas.CreatePaymentRequest) (*asaas.Payment, error) {
	p.charges++
	return &asaas.Payment{ID: "pay_fake", Status: asaas.PaymentStatusPending}, nil
}

func (p *fakeProcessor) GetPayment(id string) (*asaas.Payment, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	idx := p.calls - 1
	if idx >= len(p.statuses) {
		idx = len(p.statuses) - 1
	}
	return &asaas.Payment{ID: id, Status: p.statuses[idx]}, nil
}

func pollService(processor PaymentProcessor) *Service {
	return &Service{processor: processor}
}

func TestPollPaymentStatus(t *testing.T) {
	Convey("Given a payment that stays pending", t, func() {
		processor := &fakeProcessor{statuses: []string{asaas.PaymentStatusPending}}
		service := pollService(processor)

		Convey("The poll runs floor(timeout/interval) attempts and times out", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_1", "corr-1", 15*time.Millisecond, 1*time.Millisecond)
			So(result.TimedOut, ShouldBeTrue)
			So(result.Confirmed, ShouldBeFalse)
			So(result.Failed, ShouldBeFalse)
			So(result.Attempts, ShouldEqual, 15)
			So(processor.calls, ShouldEqual, 15)
		})
	})

	Convey("Given a payment confirmed on the third check", t, func() {
		processor := &fakeProcessor{statuses: []string{
			asaas.PaymentStatusPending,
			asaas.PaymentStatusPending,
			asaas.PaymentStatusReceived,
		}}
		service := pollService(processor)

		Convey("The poll stops early and reports confirmed", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_1", "corr-1", 100*time.Millisecond, 1*time.Millisecond)
			So(result.Confirmed, ShouldBeTrue)
			So(result.Attempts, ShouldEqual, 3)
			So(result.Status, ShouldEqual, asaas.PaymentStatusReceived)
		})
	})

	Convey("Given a payment that went overdue", t, func() {
		processor := &fakeProcessor{statuses: []string{asaas.PaymentStatusOverdue}}
		service := pollService(processor)

		Convey("The poll reports failed on the first attempt", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_1", "corr-1", 100*time.Millisecond, 1*time.Millisecond)
			So(result.Failed, ShouldBeTrue)
			So(result.TimedOut, ShouldBeFalse)
			So(result.Attempts, ShouldEqual, 1)
		})
	})

	Convey("Given a payment id the processor does not know", t, func() {
		processor := &fakeProcessor{err: asaas.ErrPaymentNotFound}
		service := pollService(processor)

		Convey("The poll fails immediately instead of burning attempts", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_missing", "corr-1", 100*time.Millisecond, 1*time.Millisecond)
			So(result.Failed, ShouldBeTrue)
			So(result.TimedOut, ShouldBeFalse)
			So(result.Attempts, ShouldEqual, 1)
			So(processor.calls, ShouldEqual, 1)
		})
	})

	Convey("Given transient processor errors", t, func() {
		processor := &fakeProcessor{err: context.DeadlineExceeded}
		service := pollService(processor)

		Convey("Each error consumes an attempt and the poll ends in timeout", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_1", "corr-1", 5*time.Millisecond, 1*time.Millisecond)
			So(result.TimedOut, ShouldBeTrue)
			So(result.Attempts, ShouldEqual, 5)
		})
	})

	Convey("Given a timeout shorter than the interval", t, func() {
		processor := &fakeProcessor{statuses: []string{asaas.PaymentStatusPending}}
		service := pollService(processor)

		Convey("No checks are issued at all", func() {
			result := service.PollPaymentStatus(context.Background(), "pay_1", "corr-1", 1*time.Millisecond, 5*time.Millisecond)
			So(result.TimedOut, ShouldBeTrue)
			So(result.Attempts, ShouldEqual, 0)
			So(processor.calls, ShouldEqual, 0)
		})
	})

	Convey("Given a result that ran out of attempts", t, func() {
		body, err := jsoniter.Marshal(&PollResult{TimedOut: true, Attempts: 15})

		Convey("The wire payload carries the timeout key", func() {
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, `"timeout":true`)
			So(string(body), ShouldContainSubstring, `"attempts":15`)
		})
	})

	Convey("Given a cancelled context", t, func() {
		processor := &fakeProcessor{statuses: []string{asaas.PaymentStatusPending}}
		service := pollService(processor)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("The poll stops after the in-flight attempt", func() {
			result := service.PollPaymentStatus(ctx, "pay_1", "corr-1", 100*time.Millisecond, 1*time.Millisecond)
			So(result.TimedOut, ShouldBeTrue)
			So(result.Attempts, ShouldEqual, 1)
		})
	})
}
