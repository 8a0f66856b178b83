package actions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
)

func pollContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, target, nil)
	return c
}

func TestPollWindow(t *testing.T) {
	Convey("Given a poll request without window parameters", t, func() {
		timeout, interval := pollWindow(pollContext("/payments/pay_1/poll"))

		Convey("The window defaults to fifteen checks one second apart", func() {
			So(timeout, ShouldEqual, 15*time.Second)
			So(interval, ShouldEqual, time.Second)
		})
	})

	Convey("Given explicit window parameters", t, func() {
		timeout, interval := pollWindow(pollContext("/payments/pay_1/poll?timeout_secs=30&interval_secs=3"))

		Convey("The request values are used", func() {
			So(timeout, ShouldEqual, 30*time.Second)
			So(interval, ShouldEqual, 3*time.Second)
		})
	})

	Convey("Given window parameters outside the allowed bounds", t, func() {
		timeout, interval := pollWindow(pollContext("/payments/pay_1/poll?timeout_secs=3600&interval_secs=0"))

		Convey("The window is clamped", func() {
			So(timeout, ShouldEqual, 5*time.Minute)
			So(interval, ShouldEqual, time.Second)
		})
	})
}
