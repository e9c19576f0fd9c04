package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authgate "github.com/narinote/authgate"
)

type fakeSource struct {
	snapshot authgate.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() authgate.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestHandlerExposesCountersAndHistogram(t *testing.T) {
	src := fakeSource{
		snapshot: authgate.MetricsSnapshot{
			Counters: map[authgate.MetricID]uint64{
				authgate.MetricLoginSuccess: 7,
			},
			Histograms: map[authgate.MetricID][]uint64{
				authgate.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(src).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	if !strings.Contains(out, "authgate_login_success_total 7") {
		t.Errorf("missing login_success counter in output:\n%s", out)
	}
	if !strings.Contains(out, `authgate_verify_latency_seconds_bucket{le="5e-06"} 1`) {
		t.Errorf("missing first histogram bucket in output:\n%s", out)
	}
	if !strings.Contains(out, `authgate_verify_latency_seconds_bucket{le="+Inf"} 36`) {
		t.Errorf("missing +Inf cumulative bucket in output:\n%s", out)
	}
	if !strings.Contains(out, "authgate_verify_latency_seconds_count 36") {
		t.Errorf("missing histogram count in output:\n%s", out)
	}
	if !strings.Contains(out, "authgate_audit_dropped_total 2") {
		t.Errorf("missing audit dropped counter in output:\n%s", out)
	}
}

func TestHandlerEmitsZeroSeries(t *testing.T) {
	src := fakeSource{
		snapshot: authgate.MetricsSnapshot{
			Counters:   map[authgate.MetricID]uint64{},
			Histograms: map[authgate.MetricID][]uint64{},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(src).ServeHTTP(rec, req)

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	// Zero-valued series still exist so dashboards see them immediately.
	if !strings.Contains(out, "authgate_signup_success_total 0") {
		t.Errorf("expected zero signup counter series:\n%s", out)
	}
}
