package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New(func() int { return 3 })

	m.ObserveLogin(LoginSucceeded)
	m.ObserveLogin(LoginRejected)
	m.ObserveLogin(LoginRejected)
	m.ObserveLogout("unauthenticated")
	m.ObserveFormLoad("create-jobs-job-form", nil)
	m.ObserveFormLoad("create-jobs-job-form", errors.New("boom"))

	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues(LoginRejected)); got != 2 {
		t.Fatalf("expected 2 rejected logins, got %v", got)
	}
	if got := testutil.ToFloat64(m.LogoutsTotal.WithLabelValues("unauthenticated")); got != 1 {
		t.Fatalf("expected 1 logout, got %v", got)
	}
	if got := testutil.ToFloat64(m.FormLoadsTotal.WithLabelValues("create-jobs-job-form", "error")); got != 1 {
		t.Fatalf("expected 1 failed form load, got %v", got)
	}
}

func TestHandlerExposesGauge(t *testing.T) {
	m := New(func() int { return 7 })
	m.ObserveLogin(LoginSucceeded)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "rabatino_web_active_sessions 7") {
		t.Fatalf("expected gauge in output: %s", body)
	}
	if !strings.Contains(string(body), `rabatino_web_logins_total{outcome="success"} 1`) {
		t.Fatalf("expected login counter in output: %s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLogin(LoginFailed)
	m.ObserveLogout("authenticated")
	m.ObserveFormLoad("x", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", rec.Code)
	}
}
