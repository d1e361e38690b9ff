package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRemoteCall(t *testing.T) {
	m := New()
	m.ObserveRemoteCall("verifyOTP", OutcomeOK, 0.02)
	m.ObserveRemoteCall("verifyOTP", OutcomeRejected, 0.01)
	m.ObserveRemoteCall("verifyOTP", OutcomeRejected, 0.01)

	if got := testutil.ToFloat64(m.RemoteCalls.WithLabelValues("verifyOTP", OutcomeRejected)); got != 2 {
		t.Fatalf("expected 2 rejected calls, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRemoteCall("signUp", OutcomeOK, 0)
	m.ObserveStep("done")
	m.IncSessions()
	m.IncTickets()
	m.IncOrders()
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.IncTickets()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "storefront_support_tickets_opened_total 1") {
		t.Fatalf("expected ticket counter in exposition, got:\n%s", body)
	}
}
