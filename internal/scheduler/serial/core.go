package serial

import (
	"log/slog"

	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/scheduler"
	"github.com/ledgerforge/transact/internal/txcontext"
)

// outstandingTask identifies the single ExecutionTask the core has
// dispatched and is waiting to hear back about. At most one exists at a
// time — the core never dispatches a second task while this is set.
type outstandingTask struct {
	contextID     txcontext.ContextId
	transactionID string
}

// activeBatch tracks the batch currently being executed one transaction at
// a time.
type activeBatch struct {
	pair      batch.BatchPair
	nextIndex int
	// contextIDs[i] is the context staged for transaction i, recorded as
	// each task is dispatched so that an invalidated batch can drop every
	// context it staged.
	contextIDs []txcontext.ContextId
	receipts   []receipts.TransactionReceipt
	// baseContextID is the chain position lastContextID held when this
	// batch's first transaction was dispatched. If the batch is
	// invalidated, the chain rolls back to this point so later batches
	// never read through this batch's abandoned writes.
	baseContextID *txcontext.ContextId
}

// core owns every piece of scheduler state that must only ever be touched
// by a single goroutine: the unscheduled-to-active batch transition, the
// one outstanding dispatched task, and the linear context chain threading
// through the scheduler's entire lifetime. Everything else (the queue, the
// callbacks, the finalized flag) lives in shared and is reached only
// through its locked accessors.
type core struct {
	shared           *shared
	coreRx           <-chan coreMessage
	executionTx      chan scheduler.ExecutionTask
	contextLifecycle scheduler.ContextLifecycle
	rootStateID      string
	log              *slog.Logger
	observer         *Observer

	lastContextID *txcontext.ContextId
	active        *activeBatch
	outstanding   *outstandingTask

	pendingRequest bool
	done           bool
	closedTx       bool
}

func newCore(
	sh *shared,
	coreRx <-chan coreMessage,
	executionTx chan scheduler.ExecutionTask,
	contextLifecycle scheduler.ContextLifecycle,
	rootStateID string,
	log *slog.Logger,
	observer *Observer,
) *core {
	return &core{
		shared:           sh,
		coreRx:           coreRx,
		executionTx:      executionTx,
		contextLifecycle: contextLifecycle,
		rootStateID:      rootStateID,
		log:              log,
		observer:         observer,
	}
}

// run is the core goroutine's entire body. It never touches shared's mutex
// directly — only through shared's accessor methods — and it is the only
// goroutine that ever reads or writes lastContextID, active, outstanding,
// pendingRequest, done and closedTx.
func (c *core) run() {
	defer c.closeExecutionTx()

	for msg := range c.coreRx {
		switch msg.kind {
		case msgTaskRequested:
			c.pendingRequest = true
			c.advance()
		case msgBatchAdded:
			c.advance()
		case msgFinalized:
			c.advance()
		case msgExecutionResult:
			c.handleCompletion(msg.notification)
			c.advance()
		case msgShutdown:
			return
		}
		if c.done {
			return
		}
	}
}

// advance dispatches the next task if, and only if, an executor is waiting
// for one and none is currently outstanding. This single gate is what
// enforces the "never more than one transaction in flight, and never hand
// out the next one before the current one's completion has been fully
// processed" ordering invariant.
func (c *core) advance() {
	if c.outstanding != nil || !c.pendingRequest || c.closedTx {
		return
	}

	for c.active == nil {
		next, ok := c.shared.nextUnscheduledBatch()
		if !ok {
			if c.shared.finalizedState() {
				c.signalEndOfStream()
			}
			return
		}
		c.startBatch(next)
	}

	task, ok := c.nextTask()
	if !ok {
		// active batch had no transactions at all; finish it immediately.
		c.finishActiveBatch()
		c.advance()
		return
	}

	c.pendingRequest = false
	c.outstanding = &outstandingTask{contextID: task.ContextID(), transactionID: task.Pair().HeaderSignature()}
	if c.observer != nil {
		c.observer.TaskDispatched(c.active.pair, task)
	}
	c.executionTx <- task
}

func (c *core) startBatch(b batch.BatchPair) {
	base := c.lastContextID
	c.active = &activeBatch{pair: b, baseContextID: base}
	if c.observer != nil {
		c.observer.BatchScheduled(b)
	}
}

// nextTask stages a fresh context for the active batch's next transaction
// and returns a task bound to it, or ok=false if the active batch has no
// more transactions to dispatch.
func (c *core) nextTask() (scheduler.ExecutionTask, bool) {
	txns := c.active.pair.Transactions()
	if c.active.nextIndex >= len(txns) {
		return scheduler.ExecutionTask{}, false
	}

	var bases []txcontext.ContextId
	if c.lastContextID != nil {
		bases = []txcontext.ContextId{*c.lastContextID}
	}
	contextID := c.contextLifecycle.CreateContext(bases, c.rootStateID)
	c.lastContextID = &contextID

	pair := txns[c.active.nextIndex]
	c.active.nextIndex++
	c.active.contextIDs = append(c.active.contextIDs, contextID)

	return scheduler.NewExecutionTask(pair, contextID), true
}

// handleCompletion applies a single completion notification to the active
// batch. A notification that does not match the outstanding task is
// reported through the error callback and otherwise ignored — it can never
// legitimately occur given the dispatch protocol, so surfacing it as an
// error rather than silently dropping it catches scheduler bugs.
func (c *core) handleCompletion(n scheduler.ExecutionTaskCompletionNotification) {
	if c.outstanding == nil || n.ContextID != c.outstanding.contextID || n.TransactionID != c.outstanding.transactionID {
		if cb := c.shared.errorCallbackFn(); cb != nil {
			cb(errUnexpectedNotification(n))
		}
		return
	}
	c.outstanding = nil
	if c.observer != nil {
		c.observer.TaskCompleted(n)
	}

	if c.active == nil {
		return
	}

	switch n.Kind {
	case scheduler.NotificationValid:
		receipt, err := c.contextLifecycle.GetTransactionReceipt(n.ContextID, n.TransactionID)
		if err != nil {
			if cb := c.shared.errorCallbackFn(); cb != nil {
				cb(err)
			}
			return
		}
		c.active.receipts = append(c.active.receipts, receipt)
		if c.active.nextIndex >= len(c.active.pair.Transactions()) {
			c.finishActiveBatch()
		}
	case scheduler.NotificationInvalid:
		c.invalidateActiveBatch(n)
	}
}

func (c *core) finishActiveBatch() {
	b := c.active
	c.active = nil
	result := &scheduler.BatchExecutionResult{Batch: b.pair, Valid: true, Receipts: b.receipts}
	if cb := c.shared.resultCallbackFn(); cb != nil {
		cb(result)
	}
	if c.observer != nil {
		c.observer.BatchCommitted(b.pair)
	}
}

// invalidateActiveBatch abandons the active batch and rolls the context
// chain back to the position it held before the batch started, so that a
// later batch never bases a read on a context this batch staged and never
// committed.
func (c *core) invalidateActiveBatch(n scheduler.ExecutionTaskCompletionNotification) {
	b := c.active
	c.active = nil
	c.lastContextID = b.baseContextID

	for _, id := range b.contextIDs {
		c.contextLifecycle.DropContext(id)
	}

	result := &scheduler.BatchExecutionResult{
		Batch:                b.pair,
		Valid:                false,
		InvalidTransactionID: n.TransactionID,
		InvalidReason:        n.InvalidReason,
	}
	if cb := c.shared.resultCallbackFn(); cb != nil {
		cb(result)
	}
	if c.observer != nil {
		c.observer.BatchInvalidated(b.pair, n)
	}
}

// signalEndOfStream delivers the terminal result-callback invocation (a nil
// *BatchExecutionResult) that marks end-of-stream once no active batch, no
// unscheduled batch, and no more will ever arrive, then closes the execution
// channel. Only ever reached once: advance bails out at its own closedTx
// guard on every call after the first.
func (c *core) signalEndOfStream() {
	if cb := c.shared.resultCallbackFn(); cb != nil {
		cb(nil)
	}
	c.closeExecutionTx()
}

func (c *core) closeExecutionTx() {
	if c.closedTx {
		return
	}
	c.closedTx = true
	c.done = true
	close(c.executionTx)
}
