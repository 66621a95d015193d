package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var (
	routeKey    = attribute.Key("http.route")
	statusKey   = attribute.Key("http.status_code")
	functionKey = attribute.Key("contract.function")
	outcomeKey  = attribute.Key("outcome")
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics is nil-safe, a nil *Metrics records nothing.
type Metrics struct {
	requests        metric.Int64Counter
	contractCalls   metric.Int64Counter
	metadataFetches metric.Int64Counter
	fetchLatency    metric.Float64ValueRecorder
}

// NewPrometheus installs a global meter provider backed by a prometheus
// exporter. The exporter is the /metrics handler.
func NewPrometheus(serviceName string) (*Metrics, *prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, nil, err
	}
	global.SetMeterProvider(exporter.MeterProvider())

	return New(global.Meter(serviceName)), exporter, nil
}

func New(meter metric.Meter) *Metrics {
	must := metric.Must(meter)

	return &Metrics{
		requests: must.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by route and response status"),
		),
		contractCalls: must.NewInt64Counter(
			"chain/call_count",
			metric.WithDescription("Count of eth_call requests, by contract function and outcome"),
		),
		metadataFetches: must.NewInt64Counter(
			"metadata/fetch_count",
			metric.WithDescription("Count of metadata fetches, by outcome"),
		),
		fetchLatency: must.NewFloat64ValueRecorder(
			"metadata/fetch_latency",
			metric.WithDescription("Metadata fetch latency in milliseconds"),
		),
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}

	return OutcomeOK
}

func (m *Metrics) ContractCall(ctx context.Context, function string, err error) {
	if m == nil {
		return
	}
	m.contractCalls.Add(ctx, 1, functionKey.String(function), outcomeKey.String(outcome(err)))
}

func (m *Metrics) MetadataFetch(ctx context.Context, started time.Time, err error) {
	if m == nil {
		return
	}
	m.metadataFetches.Add(ctx, 1, outcomeKey.String(outcome(err)))
	m.fetchLatency.Record(ctx, float64(time.Since(started))/float64(time.Millisecond), outcomeKey.String(outcome(err)))
}

// Middleware counts completed requests by chi route pattern and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if m == nil {
			return
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.Add(r.Context(), 1, routeKey.String(route), statusKey.String(strconv.Itoa(status)))
	})
}
