package serial

import (
	"errors"
	"fmt"

	"github.com/ledgerforge/transact/internal/scheduler"
)

// ErrUnexpectedNotification is wrapped by every error errUnexpectedNotification
// returns.
var ErrUnexpectedNotification = errors.New("serial scheduler: unexpected completion notification")

// errUnexpectedNotification reports a completion notification that does not
// match the task the core believes is outstanding. This can only happen if
// an ExecutionTaskCompletionNotifier is shared across schedulers or misused
// by an executor, not through any path internal to the scheduler itself.
func errUnexpectedNotification(n scheduler.ExecutionTaskCompletionNotification) error {
	return fmt.Errorf("%w for transaction %q", ErrUnexpectedNotification, n.TransactionID)
}
