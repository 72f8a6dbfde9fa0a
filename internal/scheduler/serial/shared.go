package serial

import (
	"sync"

	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/scheduler"
)

// shared holds the state touched by both the goroutine calling
// AddBatch/Cancel/Finalize and the core's own goroutine, all guarded by a
// single mutex — mirroring the Rust implementation's one shared_lock rule:
// no two of these fields are ever read or written independently of one
// another's invariants.
type shared struct {
	mu sync.Mutex

	unscheduled []batch.BatchPair
	// seen records every batch header signature ever queued. It is never
	// cleared by Cancel — a batch rejected as a duplicate once stays
	// rejected for the scheduler's lifetime, even after the original was
	// cancelled out of the unscheduled queue.
	seen map[string]struct{}

	finalized bool

	resultCallback func(*scheduler.BatchExecutionResult)
	errorCallback  func(error)
}

func newShared() *shared {
	return &shared{seen: make(map[string]struct{})}
}

func (s *shared) setResultCallback(cb func(*scheduler.BatchExecutionResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultCallback = cb
}

func (s *shared) setErrorCallback(cb func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCallback = cb
}

func (s *shared) resultCallbackFn() func(*scheduler.BatchExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultCallback
}

func (s *shared) errorCallbackFn() func(error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorCallback
}

func (s *shared) finalizedState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

func (s *shared) setFinalized(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = v
}

// addBatchIfOpen enqueues b in a single critical section covering the
// finalized check, the duplicate check, and the enqueue itself — adding a
// batch must be exclusive with finalizing the scheduler, or a batch could
// slip in between a caller's finalized check and its enqueue.
func (s *shared) addBatchIfOpen(b batch.BatchPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return scheduler.ErrSchedulerFinalized
	}
	if _, ok := s.seen[b.HeaderSignature()]; ok {
		return scheduler.NewDuplicateBatchError(b.HeaderSignature())
	}
	s.seen[b.HeaderSignature()] = struct{}{}
	s.unscheduled = append(s.unscheduled, b)
	return nil
}

// nextUnscheduledBatch pops the oldest queued batch, if any.
func (s *shared) nextUnscheduledBatch() (batch.BatchPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unscheduled) == 0 {
		return batch.BatchPair{}, false
	}
	b := s.unscheduled[0]
	s.unscheduled = s.unscheduled[1:]
	return b, true
}

// drainUnscheduledBatches empties the unscheduled queue and returns
// whatever was in it, without touching seen — cancelled batches stay
// rejected as duplicates.
func (s *shared) drainUnscheduledBatches() []batch.BatchPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.unscheduled
	s.unscheduled = nil
	return drained
}
