package serial

import (
	stdcontext "context"

	"github.com/ledgerforge/transact/internal/scheduler"
)

// taskIterator is the executor side of the pull-based dispatch protocol:
// each Next call tells the core an executor is free, then blocks for
// exactly the one task the core sends back.
type taskIterator struct {
	coreTx      chan<- coreMessage
	executionRx <-chan scheduler.ExecutionTask
}

func (it *taskIterator) Next(ctx stdcontext.Context) (scheduler.ExecutionTask, bool) {
	select {
	case it.coreTx <- coreMessage{kind: msgTaskRequested}:
	case <-ctx.Done():
		return scheduler.ExecutionTask{}, false
	}

	select {
	case task, ok := <-it.executionRx:
		return task, ok
	case <-ctx.Done():
		return scheduler.ExecutionTask{}, false
	}
}

// notifier is the executor side's handle for reporting a dispatched task's
// outcome back to the core.
type notifier struct {
	coreTx chan<- coreMessage
}

func (n *notifier) Notify(notification scheduler.ExecutionTaskCompletionNotification) {
	n.coreTx <- coreMessage{kind: msgExecutionResult, notification: notification}
}
