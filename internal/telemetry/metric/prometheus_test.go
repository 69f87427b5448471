package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}

	body := scrape(t, r)
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
}

func TestRegistries_AreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.IncListingFailure()

	if !strings.Contains(scrape(t, a), "deckshare_browse_failures_total 1") {
		t.Error("expected failure counted on first registry")
	}
	if !strings.Contains(scrape(t, b), "deckshare_browse_failures_total 0") {
		t.Error("second registry should be untouched")
	}
}

func TestRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest("/api/browse", "200", 0.005)
	r.RecordRequest("/api/browse", "200", 0.010)
	r.RecordRequest("/api/browse", "500", 0.001)

	body := scrape(t, r)
	if !strings.Contains(body, `deckshare_requests_total{route="/api/browse",status="200"} 2`) {
		t.Error("expected two 200 browse requests")
	}
	if !strings.Contains(body, `deckshare_requests_total{route="/api/browse",status="500"} 1`) {
		t.Error("expected one 500 browse request")
	}
	if !strings.Contains(body, `deckshare_request_duration_seconds_count{route="/api/browse"} 3`) {
		t.Error("expected three duration observations")
	}
}

func TestListingMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordListing(4, 2)
	r.RecordListing(1, 0)

	body := scrape(t, r)
	if !strings.Contains(body, "deckshare_browse_entries_listed_total 5") {
		t.Error("expected 5 entries listed")
	}
	if !strings.Contains(body, "deckshare_browse_entries_skipped_total 2") {
		t.Error("expected 2 entries skipped")
	}
}

func TestPreviewMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordPreview("rendered")
	r.RecordPreview("hit")
	r.RecordPreview("hit")

	body := scrape(t, r)
	if !strings.Contains(body, `deckshare_previews_total{result="hit"} 2`) {
		t.Error("expected two cache hits")
	}
	if !strings.Contains(body, `deckshare_previews_total{result="rendered"} 1`) {
		t.Error("expected one rendered preview")
	}
}

func TestSetIdle(t *testing.T) {
	r := NewRegistry()

	r.SetIdle(12, false)
	body := scrape(t, r)
	if !strings.Contains(body, "deckshare_idle_seconds 12") {
		t.Error("expected idle seconds 12")
	}
	if !strings.Contains(body, "deckshare_watchdog_state 0") {
		t.Error("expected watchdog state 0")
	}

	r.SetIdle(60, true)
	if !strings.Contains(scrape(t, r), "deckshare_watchdog_state 1") {
		t.Error("expected watchdog state 1")
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	// Should not panic
	r.RecordRequest("/", "200", 0)
	r.RecordListing(1, 1)
	r.IncListingFailure()
	r.RecordPreview("hit")
	r.SetIdle(1, false)
}
