package otelmetrics

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestHooks(t *testing.T) (*Hooks, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	h, err := New(mp.Meter("redisbasic-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, reader
}

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = s
			}
		}
	}
	return out
}

func total(s metricdata.Sum[int64]) int64 {
	var n int64
	for _, dp := range s.DataPoints {
		n += dp.Value
	}
	return n
}

func TestCountsPageEvents(t *testing.T) {
	h, reader := newTestHooks(t)

	h.PageMiss("http://a", 200, 1)
	h.PageHit("http://a", 2)
	h.PageHit("http://a", 3)
	h.PageMiss("http://b", 503, 1)
	h.PageFetchError("http://c", errors.New("refused"))

	got := collect(t, reader)
	if n := total(got["redisbasic_page_hits_total"]); n != 2 {
		t.Fatalf("hits = %d, want 2", n)
	}
	if n := total(got["redisbasic_page_misses_total"]); n != 2 {
		t.Fatalf("misses = %d, want 2", n)
	}
	if n := total(got["redisbasic_page_fetch_errors_total"]); n != 1 {
		t.Fatalf("fetch errors = %d, want 1", n)
	}

	classes := map[string]int64{}
	for _, dp := range got["redisbasic_page_misses_total"].DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("status_class"))
		classes[v.AsString()] = dp.Value
	}
	if classes["2xx"] != 1 || classes["5xx"] != 1 {
		t.Fatalf("status classes: %v", classes)
	}
}

func TestCountsBookkeepingByStage(t *testing.T) {
	h, reader := newTestHooks(t)

	h.BookkeepingError("Cache.store", "count", errors.New("x"))
	h.BookkeepingError("Cache.store", "outputs", errors.New("x"))
	h.BookkeepingError("Cache.store", "outputs", errors.New("x"))
	h.DecodeFailed("k", errors.New("x"))

	got := collect(t, reader)
	s := got["redisbasic_bookkeeping_errors_total"]
	if total(s) != 3 || len(s.DataPoints) != 2 {
		t.Fatalf("bookkeeping: total=%d points=%d", total(s), len(s.DataPoints))
	}
	if n := total(got["redisbasic_decode_failures_total"]); n != 1 {
		t.Fatalf("decode failures = %d", n)
	}
}

func TestStatusClass(t *testing.T) {
	for status, want := range map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 599: "5xx", 0: "other", 700: "other"} {
		if got := statusClass(status); got != want {
			t.Fatalf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
