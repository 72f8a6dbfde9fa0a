package serial

import (
	stdcontext "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/ledgerforge/transact/internal/eventbus"
	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/scheduler"
	"github.com/ledgerforge/transact/internal/txcontext"
)

func TestObserverWithNoCollaboratorsIsNoop(t *testing.T) {
	o := NewObserver(nil, nil, nil, nil)
	b := batch.NewBatchPair("batch-1", nil)

	o.BatchScheduled(b)
	o.BatchCommitted(b)
	o.BatchInvalidated(b, scheduler.Invalid(txcontext.NewContextId(), "txn-1", "boom"))
}

type recordingHandlerForObserver struct {
	events []eventbus.EventType
	seen   []*eventbus.Event
}

func (h *recordingHandlerForObserver) ID() string                    { return "observer-test" }
func (h *recordingHandlerForObserver) Handles() []eventbus.EventType { return h.events }
func (h *recordingHandlerForObserver) Priority() int                 { return 0 }
func (h *recordingHandlerForObserver) Handle(_ stdcontext.Context, event *eventbus.Event, _ *eventbus.Result) error {
	h.seen = append(h.seen, event)
	return nil
}

func TestObserverEmitsEventsOnBus(t *testing.T) {
	bus := eventbus.New()
	h := &recordingHandlerForObserver{events: []eventbus.EventType{eventbus.EventBatchScheduled, eventbus.EventBatchCommitted}}
	bus.Register(h)

	o := NewObserver(nooptrace.NewTracerProvider().Tracer("test"), noopmetric.NewMeterProvider().Meter("test"), bus, nil)
	b := batch.NewBatchPair("batch-1", []batch.TransactionPair{batch.NewTransactionPair("txn-1", nil)})

	o.BatchScheduled(b)
	o.BatchCommitted(b)

	require.Len(t, h.seen, 2)
	assert.Equal(t, "batch-1", h.seen[0].Fields["batch"])
	assert.Equal(t, "batch-1", h.seen[1].Fields["batch"])
}

func TestObserverTaskDispatchedAndCompletedEndsSpan(t *testing.T) {
	bus := eventbus.New()
	o := NewObserver(nooptrace.NewTracerProvider().Tracer("test"), noopmetric.NewMeterProvider().Meter("test"), bus, nil)

	b := batch.NewBatchPair("batch-1", []batch.TransactionPair{batch.NewTransactionPair("txn-1", nil)})
	task := scheduler.NewExecutionTask(b.Transactions()[0], txcontext.NewContextId())

	o.TaskDispatched(b, task)
	require.Len(t, o.spans, 1)

	o.TaskCompleted(scheduler.Valid(txcontext.NewContextId(), "txn-1"))
	assert.Empty(t, o.spans)
}
