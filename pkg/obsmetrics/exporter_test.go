package obsmetrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
)

func TestUpdateAndScrape(t *testing.T) {
	e := New()
	e.Update(stats.Snapshot{Execs: 42, UniqueCrashes: 3, CoverageSize: 11})

	handler := promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "vmfuzzer_execs_total 42") {
		t.Fatalf("expected execs_total gauge in output, got:\n%s", body)
	}
	if !strings.Contains(body, "vmfuzzer_unique_crashes 3") {
		t.Fatalf("expected unique_crashes gauge in output, got:\n%s", body)
	}
}
