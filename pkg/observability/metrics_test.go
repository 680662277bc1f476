package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered seeds every collector and verifies it shows up in
// the default registry.
func TestMetricsRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues("GET", "2xx", "test").Inc()
	RequestDuration.WithLabelValues("GET", "test").Observe(0.1)
	RetrievalsTotal.WithLabelValues("http", OutcomeCompleted).Inc()
	RetrievalDuration.WithLabelValues("http").Observe(0.1)
	DispatchesTotal.WithLabelValues("test", OutcomeOK).Inc()
	DispatchDuration.WithLabelValues("test").Observe(0.1)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"apiclient_requests_total":             false,
		"apiclient_request_duration_seconds":   false,
		"apiclient_retrievals_total":           false,
		"apiclient_retrieval_duration_seconds": false,
		"apiclient_dispatches_total":           false,
		"apiclient_dispatch_duration_seconds":  false,
		"apiclient_dispatches_in_flight":       false,
		"apiclient_requests_in_flight":         false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

func TestMiddlewareRecordsRequestCount(t *testing.T) {
	before := counterValue(t, RequestsTotal, "GET", "2xx", "unmatched")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/calls", nil))

	if delta := counterValue(t, RequestsTotal, "GET", "2xx", "unmatched") - before; delta != 1 {
		t.Errorf("expected request count to increase by 1, got delta=%f", delta)
	}
}

func TestMiddlewareUsesMuxPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/calls/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	route := "GET /v1/calls/{name}"
	before := counterValue(t, RequestsTotal, "GET", "4xx", route)
	beforeObs := histogramCount(t, RequestDuration, "GET", route)

	MetricsMiddleware(mux).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/calls/weather", nil))

	if delta := counterValue(t, RequestsTotal, "GET", "4xx", route) - before; delta != 1 {
		t.Errorf("expected 4xx count for %q to increase by 1, got delta=%f", route, delta)
	}
	if delta := histogramCount(t, RequestDuration, "GET", route) - beforeObs; delta != 1 {
		t.Errorf("expected one duration observation, got delta=%d", delta)
	}
}

func TestMiddlewarePassesFlush(t *testing.T) {
	tests := []struct {
		name  string
		flush func(w http.ResponseWriter) error
	}{
		{"flusher", func(w http.ResponseWriter) error {
			w.(http.Flusher).Flush()
			return nil
		}},
		{"response controller", func(w http.ResponseWriter) error {
			return http.NewResponseController(w).Flush()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("event: message\n\n"))
				if err := tt.flush(w); err != nil {
					t.Errorf("flush: %v", err)
				}
			}))
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
			if !rec.Flushed {
				t.Error("expected underlying writer to be flushed")
			}
		})
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	DispatchesTotal.WithLabelValues("exposed", OutcomeOK).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `apiclient_dispatches_total{call="exposed",outcome="ok"}`) {
		t.Errorf("exposition missing dispatch counter:\n%s", body)
	}
}

func TestMiddlewareTracksInFlight(t *testing.T) {
	before := gaugeValue(t, RequestsInFlight)
	var during float64
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		during = gaugeValue(t, RequestsInFlight)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during != before+1 {
		t.Errorf("in flight during request = %v, want %v", during, before+1)
	}
	if after := gaugeValue(t, RequestsInFlight); after != before {
		t.Errorf("in flight after request = %v, want %v", after, before)
	}
}

func gaugeValue(t testing.TB, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("writing gauge metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t testing.TB, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t testing.TB, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
