// Package scheduler defines the collaborator-facing shapes a scheduler
// implementation (see scheduler/serial) exchanges with its caller: the
// batches and tasks it accepts, the results and notifications it produces,
// and the ContextLifecycle boundary it drives to stage per-transaction
// state.
package scheduler

import (
	stdcontext "context"

	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/txcontext"
)

// ContextLifecycle is the boundary between a Scheduler and the context
// manager driving transaction execution: the scheduler asks it to stage a
// fresh context per dispatched transaction, and to turn a finished
// context's accumulated changes into a receipt.
type ContextLifecycle interface {
	CreateContext(baseContexts []txcontext.ContextId, stateID string) txcontext.ContextId
	GetTransactionReceipt(contextID txcontext.ContextId, transactionID string) (receipts.TransactionReceipt, error)
	DropContext(contextID txcontext.ContextId)
}

// ExecutionTask is a single transaction dispatched for execution, paired
// with the context an executor should stage its reads and writes through.
type ExecutionTask struct {
	pair      batch.TransactionPair
	contextID txcontext.ContextId
}

func NewExecutionTask(pair batch.TransactionPair, contextID txcontext.ContextId) ExecutionTask {
	return ExecutionTask{pair: pair, contextID: contextID}
}

func (t ExecutionTask) Pair() batch.TransactionPair { return t.pair }

func (t ExecutionTask) ContextID() txcontext.ContextId { return t.contextID }

// NotificationKind distinguishes a transaction that executed successfully
// from one an executor rejected as invalid.
type NotificationKind int

const (
	NotificationValid NotificationKind = iota
	NotificationInvalid
)

// ExecutionTaskCompletionNotification reports the outcome of a single
// dispatched ExecutionTask back to the scheduler.
type ExecutionTaskCompletionNotification struct {
	Kind          NotificationKind
	ContextID     txcontext.ContextId
	TransactionID string
	InvalidReason string
}

// Valid builds a successful completion notification.
func Valid(contextID txcontext.ContextId, transactionID string) ExecutionTaskCompletionNotification {
	return ExecutionTaskCompletionNotification{
		Kind:          NotificationValid,
		ContextID:     contextID,
		TransactionID: transactionID,
	}
}

// Invalid builds a failed completion notification; reason is surfaced on
// the batch's eventual BatchExecutionResult.
func Invalid(contextID txcontext.ContextId, transactionID, reason string) ExecutionTaskCompletionNotification {
	return ExecutionTaskCompletionNotification{
		Kind:          NotificationInvalid,
		ContextID:     contextID,
		TransactionID: transactionID,
		InvalidReason: reason,
	}
}

// BatchExecutionResult is the outcome of a batch that has either completed
// every transaction successfully or been invalidated by one that failed.
type BatchExecutionResult struct {
	Batch                batch.BatchPair
	Valid                bool
	Receipts             []receipts.TransactionReceipt
	InvalidTransactionID string
	InvalidReason        string
}

// ExecutionTaskCompletionNotifier delivers completion notifications back to
// a scheduler. Implementations must be safe to share across every goroutine
// executing a dispatched task.
type ExecutionTaskCompletionNotifier interface {
	Notify(notification ExecutionTaskCompletionNotification)
}

// ExecutionTaskIterator is a single-use, lazily-pulling source of
// ExecutionTasks: each Next call requests exactly one task and blocks until
// it is produced, the scheduler has no more work (ok is false), or ctx is
// cancelled.
type ExecutionTaskIterator interface {
	Next(ctx stdcontext.Context) (task ExecutionTask, ok bool)
}

// Scheduler schedules batches of transactions for execution and reports
// their results, bridging a producer (client) goroutine that adds batches
// and a consumer (executor) goroutine that pulls tasks and reports their
// completion.
type Scheduler interface {
	SetResultCallback(callback func(*BatchExecutionResult)) error
	SetErrorCallback(callback func(error)) error
	AddBatch(b batch.BatchPair) error
	Cancel() ([]batch.BatchPair, error)
	Finalize() error
	TakeTaskIterator() (ExecutionTaskIterator, error)
	NewNotifier() (ExecutionTaskCompletionNotifier, error)
}
