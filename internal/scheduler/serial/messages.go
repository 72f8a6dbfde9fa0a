package serial

import "github.com/ledgerforge/transact/internal/scheduler"

// coreMessageKind enumerates everything that can wake the core goroutine's
// main loop.
type coreMessageKind int

const (
	// msgTaskRequested is sent by the task iterator's Next call: the
	// executor side is ready for one more ExecutionTask.
	msgTaskRequested coreMessageKind = iota
	// msgBatchAdded is sent after a batch is enqueued under the shared
	// lock — it only wakes the core to check for new work; the batch
	// itself was already placed on the shared unscheduled queue.
	msgBatchAdded
	// msgFinalized is sent once no more batches will ever be added.
	msgFinalized
	// msgExecutionResult carries a completion notification for the single
	// outstanding dispatched task.
	msgExecutionResult
	// msgShutdown tells the core to stop its loop and exit.
	msgShutdown
)

type coreMessage struct {
	kind         coreMessageKind
	notification scheduler.ExecutionTaskCompletionNotification
}
