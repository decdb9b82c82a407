package pipeline

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/metrics"
	"github.com/ajitpratap0/tabprep/pkg/observability"
	"github.com/ajitpratap0/tabprep/pkg/steps"
)

// Status is the phase of a step event
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event reports the progress of one step. RowsOut, Warnings and Diagnostics
// are set on completed events; Err is set on failed events.
type Event struct {
	RunID       string
	Index       int
	Kind        steps.Kind
	Status      Status
	RowsIn      int
	RowsOut     int
	Duration    time.Duration
	Warnings    []errors.Warning
	Diagnostics map[string]interface{}
	Err         error
}

// EventSink receives step events. Calls happen synchronously on the
// goroutine running the pipeline, in step order.
type EventSink interface {
	OnStep(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(ctx context.Context, ev Event)

// OnStep calls f
func (f SinkFunc) OnStep(ctx context.Context, ev Event) { f(ctx, ev) }

type nopSink struct{}

func (nopSink) OnStep(context.Context, Event) {}

// MultiSink fans events out to several sinks in order
type MultiSink []EventSink

// OnStep forwards ev to every sink
func (m MultiSink) OnStep(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.OnStep(ctx, ev)
		}
	}
}

// RecordingSink keeps every event it receives
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

// OnStep records ev
func (r *RecordingSink) OnStep(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events
func (r *RecordingSink) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// LoggerSink logs step events with zap
type LoggerSink struct {
	logger *zap.Logger
}

// NewLoggerSink creates a sink logging to l
func NewLoggerSink(l *zap.Logger) *LoggerSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &LoggerSink{logger: l}
}

// OnStep logs ev. Warnings are logged individually at warn level.
func (s *LoggerSink) OnStep(_ context.Context, ev Event) {
	logger := s.logger.With(
		zap.String("run_id", ev.RunID),
		zap.Int("step", ev.Index),
		zap.String("kind", string(ev.Kind)),
	)

	switch ev.Status {
	case StatusStarted:
		logger.Debug("step started", zap.Int("rows_in", ev.RowsIn))
	case StatusCompleted:
		for _, w := range ev.Warnings {
			logger.Warn("step warning",
				zap.String("code", string(w.Code)),
				zap.String("column", w.Column),
				zap.String("detail", w.Message))
		}
		logger.Info("step completed",
			zap.Int("rows_in", ev.RowsIn),
			zap.Int("rows_out", ev.RowsOut),
			zap.Duration("duration", ev.Duration),
			zap.Int("warnings", len(ev.Warnings)))
	case StatusFailed:
		logger.Error("step failed",
			zap.Int("rows_in", ev.RowsIn),
			zap.Duration("duration", ev.Duration),
			zap.Error(ev.Err))
	}
}

// MetricsSink records completed and failed steps on a metrics collector
type MetricsSink struct {
	collector *metrics.Collector
}

// NewMetricsSink creates a sink recording on c
func NewMetricsSink(c *metrics.Collector) *MetricsSink {
	return &MetricsSink{collector: c}
}

// OnStep observes finished steps
func (s *MetricsSink) OnStep(_ context.Context, ev Event) {
	switch ev.Status {
	case StatusCompleted:
		s.collector.ObserveStep(string(ev.Kind), metrics.StatusSuccess, ev.RowsIn, ev.RowsOut, ev.Duration)
	case StatusFailed:
		s.collector.ObserveStep(string(ev.Kind), metrics.StatusFailure, ev.RowsIn, ev.RowsIn, ev.Duration)
	}
}

// TracingSink opens one span per step, from its started event to its
// completed or failed event
type TracingSink struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[spanKey]trace.Span
}

type spanKey struct {
	runID string
	index int
}

// NewTracingSink creates a sink starting spans on tracer. A nil tracer uses
// the global tracer provider.
func NewTracingSink(tracer trace.Tracer) *TracingSink {
	if tracer == nil {
		tracer = observability.Tracer(nil)
	}
	return &TracingSink{tracer: tracer, spans: make(map[spanKey]trace.Span)}
}

// OnStep starts or ends the span of ev's step
func (s *TracingSink) OnStep(ctx context.Context, ev Event) {
	key := spanKey{runID: ev.RunID, index: ev.Index}

	if ev.Status == StatusStarted {
		_, span := s.tracer.Start(ctx, "step "+string(ev.Kind),
			trace.WithAttributes(
				attribute.String("tabprep.run_id", ev.RunID),
				attribute.Int("tabprep.step.index", ev.Index),
				attribute.String("tabprep.step.kind", string(ev.Kind)),
				attribute.Int("tabprep.rows_in", ev.RowsIn),
			))
		s.mu.Lock()
		s.spans[key] = span
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	span, ok := s.spans[key]
	delete(s.spans, key)
	s.mu.Unlock()
	if !ok {
		return
	}

	switch ev.Status {
	case StatusCompleted:
		span.SetAttributes(attribute.Int("tabprep.rows_out", ev.RowsOut))
		for k, v := range ev.Diagnostics {
			span.SetAttributes(observability.Attr("tabprep.diag."+k, v))
		}
		for _, w := range ev.Warnings {
			span.AddEvent("warning", trace.WithAttributes(
				attribute.String("code", string(w.Code)),
				attribute.String("column", w.Column),
			))
		}
		span.SetStatus(codes.Ok, "")
	case StatusFailed:
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	}
	span.End()
}
