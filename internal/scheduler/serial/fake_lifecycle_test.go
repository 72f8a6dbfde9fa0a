package serial

import (
	"sync"

	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/txcontext"
)

// fakeLifecycle is a minimal in-memory ContextLifecycle double: it hands out
// fresh context IDs and lets a test script a receipt (or error) per
// transaction ID, without involving the real context manager or a state
// store — the scheduler tests exercise ordering and atomicity, not state
// semantics.
type fakeLifecycle struct {
	mu       sync.Mutex
	contexts map[txcontext.ContextId][]txcontext.ContextId
	dropped  map[txcontext.ContextId]bool
	receipts map[string]receipts.TransactionReceipt
	errs     map[string]error
}

func newFakeLifecycle() *fakeLifecycle {
	return &fakeLifecycle{
		contexts: make(map[txcontext.ContextId][]txcontext.ContextId),
		dropped:  make(map[txcontext.ContextId]bool),
		receipts: make(map[string]receipts.TransactionReceipt),
		errs:     make(map[string]error),
	}
}

func (f *fakeLifecycle) CreateContext(baseContexts []txcontext.ContextId, stateID string) txcontext.ContextId {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := txcontext.NewContextId()
	f.contexts[id] = baseContexts
	return id
}

func (f *fakeLifecycle) DropContext(id txcontext.ContextId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped[id] = true
}

func (f *fakeLifecycle) GetTransactionReceipt(id txcontext.ContextId, transactionID string) (receipts.TransactionReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[transactionID]; ok {
		return receipts.TransactionReceipt{}, err
	}
	if r, ok := f.receipts[transactionID]; ok {
		return r, nil
	}
	return receipts.TransactionReceipt{TransactionID: transactionID}, nil
}

func (f *fakeLifecycle) isDropped(id txcontext.ContextId) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped[id]
}
