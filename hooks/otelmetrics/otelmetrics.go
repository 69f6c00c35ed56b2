// Package otelmetrics counts hook events with OpenTelemetry instruments.
//
//	exporter, _ := prometheus.New()
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
//	hooks, _ := otelmetrics.New(mp.Meter("redisbasic"))
//
// URLs and keys are never used as attributes.
package otelmetrics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/redisbasic"
)

type Hooks struct {
	bookkeeping metric.Int64Counter
	decodes     metric.Int64Counter
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	fetchErrors metric.Int64Counter
}

var _ redisbasic.Hooks = (*Hooks)(nil)

func New(meter metric.Meter) (*Hooks, error) {
	h := &Hooks{}
	var err error

	h.bookkeeping, err = meter.Int64Counter(
		"redisbasic_bookkeeping_errors_total",
		metric.WithDescription("Failed counter or history writes of recorded operations"),
	)
	if err != nil {
		return nil, err
	}

	h.decodes, err = meter.Int64Counter(
		"redisbasic_decode_failures_total",
		metric.WithDescription("Stored values rejected by a decode function"),
	)
	if err != nil {
		return nil, err
	}

	h.hits, err = meter.Int64Counter(
		"redisbasic_page_hits_total",
		metric.WithDescription("GetPage calls served from the store"),
	)
	if err != nil {
		return nil, err
	}

	h.misses, err = meter.Int64Counter(
		"redisbasic_page_misses_total",
		metric.WithDescription("GetPage calls that fetched upstream"),
	)
	if err != nil {
		return nil, err
	}

	h.fetchErrors, err = meter.Int64Counter(
		"redisbasic_page_fetch_errors_total",
		metric.WithDescription("Upstream fetches that failed"),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hooks) BookkeepingError(op, stage string, _ error) {
	h.bookkeeping.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("stage", stage),
	))
}

func (h *Hooks) DecodeFailed(string, error) {
	h.decodes.Add(context.Background(), 1)
}

func (h *Hooks) PageHit(string, int64) {
	h.hits.Add(context.Background(), 1)
}

func (h *Hooks) PageMiss(_ string, status int, _ int64) {
	h.misses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("status_class", statusClass(status)),
	))
}

func (h *Hooks) PageFetchError(string, error) {
	h.fetchErrors.Add(context.Background(), 1)
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
