package asaas

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitEnvironmentSelection(t *testing.T) {
	Convey("Sandbox keys route to the sandbox url by marker substring", t, func() {
		p := Init("$aact_hmlg_abcdef", "https://api.example.com/v3", "https://sandbox.example.com/v3", "hmlg")
		So(p.apiUrl, ShouldEqual, "https://sandbox.example.com/v3")
	})
	Convey("Production keys route to the production url", t, func() {
		p := Init("$aact_prod_abcdef", "https://api.example.com/v3", "https://sandbox.example.com/v3", "hmlg")
		So(p.apiUrl, ShouldEqual, "https://api.example.com/v3")
	})
}

func TestGetPayment(t *testing.T) {
	Convey("Given a processor returning payment statuses", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/payments/pay_1", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("access_token") != "key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pay_1","status":"RECEIVED","value":32.9,"externalReference":"42"}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		p := Init("key", server.URL, "", "")

		Convey("a known payment decodes with its status", func() {
			payment, err := p.GetPayment("pay_1")
			So(err, ShouldBeNil)
			So(payment.Status, ShouldEqual, PaymentStatusReceived)
			So(IsTerminalConfirmed(payment.Status), ShouldBeTrue)
		})

		Convey("a vanished payment yields the dedicated not found error", func() {
			_, err := p.GetPayment("pay_unknown")
			So(err, ShouldEqual, ErrPaymentNotFound)
		})
	})
}

func TestFindCustomerByEmail(t *testing.T) {
	Convey("Given a processor customer search endpoint", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("email") == "known@example.com" {
				_, _ = w.Write([]byte(`{"totalCount":1,"data":[{"id":"cus_1","name":"Known","email":"known@example.com"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"totalCount":0,"data":[]}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		p := Init("key", server.URL, "", "")

		Convey("an existing customer is returned", func() {
			customer, err := p.FindCustomerByEmail("known@example.com")
			So(err, ShouldBeNil)
			So(customer, ShouldNotBeNil)
			So(customer.ID, ShouldEqual, "cus_1")
		})

		Convey("a missing customer returns nil without error", func() {
			customer, err := p.FindCustomerByEmail("new@example.com")
			So(err, ShouldBeNil)
			So(customer, ShouldBeNil)
		})
	})
}
