package scheduler

import (
	"errors"
	"fmt"
)

// ErrSchedulerFinalized is returned by AddBatch once Finalize has been
// called — a finalized scheduler accepts no further batches.
var ErrSchedulerFinalized = errors.New("scheduler: already finalized")

// ErrNoTaskIterator is returned by TakeTaskIterator once the scheduler's
// single task iterator has already been taken.
var ErrNoTaskIterator = errors.New("scheduler: task iterator already taken")

// ErrDuplicateBatch is wrapped by NewDuplicateBatchError.
var ErrDuplicateBatch = errors.New("scheduler: duplicate batch")

// NewDuplicateBatchError reports that headerSignature names a batch that
// has already been queued — including one later cancelled, since
// duplicate rejection is never cleared by Cancel.
func NewDuplicateBatchError(headerSignature string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateBatch, headerSignature)
}
