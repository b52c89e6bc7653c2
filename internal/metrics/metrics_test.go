package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if cyclesTotal == nil || notificationsTotal == nil || fetchDurationSeconds == nil ||
		profileCounter == nil || lastSuccessTimestampSec == nil ||
		httpRequestsTotal == nil || httpRequestDuration == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveCycle(t *testing.T) {
	Init()

	before := testutil.ToFloat64(cyclesTotal.WithLabelValues(ResultFailure, "parse"))
	ObserveCycle(ResultFailure, "parse")
	ObserveCycle(ResultFailure, "parse")
	if got := testutil.ToFloat64(cyclesTotal.WithLabelValues(ResultFailure, "parse")); got != before+2 {
		t.Errorf("expected parse failures to be %v, got %v", before+2, got)
	}
}

func TestSetProfile(t *testing.T) {
	Init()

	at := time.Unix(1_700_000_000, 0)
	SetProfile("someone", 114, 128, 29, at)

	if got := testutil.ToFloat64(profileCounter.WithLabelValues("someone", "followers")); got != 114 {
		t.Errorf("expected followers gauge 114, got %v", got)
	}
	if got := testutil.ToFloat64(profileCounter.WithLabelValues("someone", "posts")); got != 29 {
		t.Errorf("expected posts gauge 29, got %v", got)
	}
	if got := testutil.ToFloat64(lastSuccessTimestampSec); got != float64(at.Unix()) {
		t.Errorf("expected last success %v, got %v", at.Unix(), got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	ObserveFetch(250 * time.Millisecond)
	ObserveNotification("success", ResultSuccess)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"instascrape_fetch_duration_seconds", "instascrape_notifications_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	Init()

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/probe", "200"))
	ObserveHTTPRequest("GET", "/probe", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/probe", "200")); got != before+1 {
		t.Errorf("expected %v requests, got %v", before+1, got)
	}
}
