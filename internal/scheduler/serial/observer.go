package serial

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ledgerforge/transact/internal/eventbus"
	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/scheduler"
)

// Observer records telemetry and fans out lifecycle events for a running
// Scheduler. Every field is independently nilable: an Observer with nothing
// configured is a no-op. None of Observer's work participates in the
// scheduler's ordering or atomicity invariants — it runs synchronously on
// the core goroutine, strictly after the state change it describes, and
// never reenters the scheduler.
type Observer struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Bus    *eventbus.Bus
	Log    *slog.Logger

	batchesScheduled  metric.Int64Counter
	batchesCommitted  metric.Int64Counter
	batchesInvalid    metric.Int64Counter
	tasksDispatched   metric.Int64Counter

	spans map[string]trace.Span
}

// NewObserver builds an Observer from the given collaborators, registering
// its OpenTelemetry instruments up front. Any nil collaborator degrades
// that concern to a no-op.
func NewObserver(tracer trace.Tracer, meter metric.Meter, bus *eventbus.Bus, log *slog.Logger) *Observer {
	o := &Observer{Tracer: tracer, Meter: meter, Bus: bus, Log: log, spans: make(map[string]trace.Span)}
	if meter != nil {
		o.batchesScheduled, _ = meter.Int64Counter("scheduler.batches.scheduled")
		o.batchesCommitted, _ = meter.Int64Counter("scheduler.batches.committed")
		o.batchesInvalid, _ = meter.Int64Counter("scheduler.batches.invalidated")
		o.tasksDispatched, _ = meter.Int64Counter("scheduler.tasks.dispatched")
	}
	return o
}

func (o *Observer) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

func (o *Observer) emit(eventType eventbus.EventType, fields map[string]string) {
	if o.Bus == nil {
		return
	}
	result, err := o.Bus.Dispatch(context.Background(), &eventbus.Event{Type: eventType, Fields: fields})
	if err != nil {
		o.logger().Warn("scheduler: eventbus dispatch failed", "event", eventType, "error", err)
		return
	}
	_ = result
}

func (o *Observer) BatchScheduled(b batch.BatchPair) {
	if o.batchesScheduled != nil {
		o.batchesScheduled.Add(context.Background(), 1)
	}
	o.emit(eventbus.EventBatchScheduled, map[string]string{"batch": b.HeaderSignature()})
}

func (o *Observer) TaskDispatched(b batch.BatchPair, task scheduler.ExecutionTask) {
	if o.tasksDispatched != nil {
		o.tasksDispatched.Add(context.Background(), 1)
	}
	if o.Tracer != nil {
		_, span := o.Tracer.Start(context.Background(), "scheduler.task",
			trace.WithAttributes(
				attribute.String("batch", b.HeaderSignature()),
				attribute.String("transaction", task.Pair().HeaderSignature()),
			),
		)
		o.spans[task.Pair().HeaderSignature()] = span
	}
	o.emit(eventbus.EventTaskDispatched, map[string]string{
		"batch":       b.HeaderSignature(),
		"transaction": task.Pair().HeaderSignature(),
	})
}

func (o *Observer) TaskCompleted(n scheduler.ExecutionTaskCompletionNotification) {
	if span, ok := o.spans[n.TransactionID]; ok {
		delete(o.spans, n.TransactionID)
		if n.Kind == scheduler.NotificationInvalid {
			span.AddEvent("invalid", trace.WithAttributes(attribute.String("reason", n.InvalidReason)))
		}
		span.End()
	}
}

func (o *Observer) BatchCommitted(b batch.BatchPair) {
	if o.batchesCommitted != nil {
		o.batchesCommitted.Add(context.Background(), 1)
	}
	o.emit(eventbus.EventBatchCommitted, map[string]string{"batch": b.HeaderSignature()})
}

func (o *Observer) BatchInvalidated(b batch.BatchPair, n scheduler.ExecutionTaskCompletionNotification) {
	if o.batchesInvalid != nil {
		o.batchesInvalid.Add(context.Background(), 1)
	}
	o.emit(eventbus.EventBatchInvalidated, map[string]string{
		"batch":       b.HeaderSignature(),
		"transaction": n.TransactionID,
		"reason":      n.InvalidReason,
	})
}
