// Package serial implements a Scheduler that executes batches of
// transactions one at a time, in the order batches were added, driving a
// single linear chain of staged contexts across its entire lifetime. A
// dedicated core goroutine owns all scheduling decisions; the producer
// (AddBatch/Cancel/Finalize) and consumer (the task iterator and notifier)
// sides only ever exchange messages with it — never with each other
// directly.
package serial

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/scheduler"
)

// Option configures a Scheduler at construction time.
type Option func(*options)

type options struct {
	log      *slog.Logger
	observer *Observer
}

// WithLogger attaches a logger for scheduler-internal diagnostics. Defaults
// to slog.Default() when omitted.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver attaches telemetry and event-bus hooks to every batch and
// task lifecycle transition the scheduler drives.
func WithObserver(observer *Observer) Option {
	return func(o *options) { o.observer = observer }
}

// Scheduler is a serial Scheduler: at most one transaction is ever
// outstanding, and batches complete (or are invalidated) in the order they
// were added.
type Scheduler struct {
	shared *shared

	coreTx   chan coreMessage
	coreDone chan struct{}

	iteratorMu    sync.Mutex
	iteratorTaken bool
	iteratorTx    chan<- coreMessage
	executionRx   <-chan scheduler.ExecutionTask
}

// New builds a Scheduler whose contexts are created through
// contextLifecycle and rooted at stateID — the state snapshot every batch's
// first transaction reads from.
func New(contextLifecycle scheduler.ContextLifecycle, stateID string, opts ...Option) (*Scheduler, error) {
	if contextLifecycle == nil {
		return nil, errors.New("serial scheduler: contextLifecycle must not be nil")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	sh := newShared()
	coreTx := make(chan coreMessage)
	executionTx := make(chan scheduler.ExecutionTask)
	coreDone := make(chan struct{})

	c := newCore(sh, coreTx, executionTx, contextLifecycle, stateID, o.log, o.observer)
	go func() {
		defer close(coreDone)
		c.run()
	}()

	return &Scheduler{
		shared:      sh,
		coreTx:      coreTx,
		coreDone:    coreDone,
		iteratorTx:  coreTx,
		executionRx: executionTx,
	}, nil
}

func (s *Scheduler) SetResultCallback(callback func(*scheduler.BatchExecutionResult)) error {
	s.shared.setResultCallback(callback)
	return nil
}

func (s *Scheduler) SetErrorCallback(callback func(error)) error {
	s.shared.setErrorCallback(callback)
	return nil
}

func (s *Scheduler) AddBatch(b batch.BatchPair) error {
	if err := s.shared.addBatchIfOpen(b); err != nil {
		return err
	}
	s.coreTx <- coreMessage{kind: msgBatchAdded}
	return nil
}

// Cancel drains every batch still waiting to be scheduled and returns them
// to the caller. Batches already active or completed are unaffected;
// cancelled batches still count as seen and cannot be re-added.
func (s *Scheduler) Cancel() ([]batch.BatchPair, error) {
	return s.shared.drainUnscheduledBatches(), nil
}

func (s *Scheduler) Finalize() error {
	s.shared.setFinalized(true)
	s.coreTx <- coreMessage{kind: msgFinalized}
	return nil
}

// TakeTaskIterator returns the scheduler's single task iterator. It may be
// called exactly once.
func (s *Scheduler) TakeTaskIterator() (scheduler.ExecutionTaskIterator, error) {
	s.iteratorMu.Lock()
	defer s.iteratorMu.Unlock()
	if s.iteratorTaken {
		return nil, scheduler.ErrNoTaskIterator
	}
	s.iteratorTaken = true
	return &taskIterator{coreTx: s.iteratorTx, executionRx: s.executionRx}, nil
}

// NewNotifier returns a fresh notifier bound to this scheduler. Unlike the
// task iterator, any number of notifiers may be created and used
// concurrently — they only ever send, never receive.
func (s *Scheduler) NewNotifier() (scheduler.ExecutionTaskCompletionNotifier, error) {
	return &notifier{coreTx: s.coreTx}, nil
}

// Shutdown stops the core goroutine and waits for it to exit. It is safe to
// call even if the task iterator is blocked in Next; closing the execution
// channel unblocks it.
func (s *Scheduler) Shutdown() {
	select {
	case s.coreTx <- coreMessage{kind: msgShutdown}:
	case <-s.coreDone:
		return
	}
	<-s.coreDone
}
