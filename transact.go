// Package transact provides a minimal public API over the transaction
// context manager and serial scheduler: a copy-on-write chain of staged
// state mutations, and a scheduler that drives one batch of transactions
// through it at a time.
//
// Most callers assembling a scheduler need only this package plus a
// state.Reader/Committer implementation (internal/state/memory or
// internal/state/sqlite) and a protocol/batch.BatchPair source.
package transact

import (
	stdcontext "context"
	"log/slog"

	"github.com/ledgerforge/transact/internal/protocol/batch"
	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/scheduler"
	"github.com/ledgerforge/transact/internal/scheduler/serial"
	"github.com/ledgerforge/transact/internal/state"
	"github.com/ledgerforge/transact/internal/state/memory"
	"github.com/ledgerforge/transact/internal/state/sqlite"
	"github.com/ledgerforge/transact/internal/txcontext"
)

// Core types for working with contexts and batches.
type (
	ContextId       = txcontext.ContextId
	BatchPair       = batch.BatchPair
	TransactionPair = batch.TransactionPair

	TransactionReceipt = receipts.TransactionReceipt
	Event              = receipts.Event

	ExecutionTask                       = scheduler.ExecutionTask
	ExecutionTaskCompletionNotification = scheduler.ExecutionTaskCompletionNotification
	BatchExecutionResult                = scheduler.BatchExecutionResult
	ExecutionTaskIterator               = scheduler.ExecutionTaskIterator
	ExecutionTaskCompletionNotifier     = scheduler.ExecutionTaskCompletionNotifier
	ContextLifecycle                    = scheduler.ContextLifecycle

	// Scheduler is the concrete serial scheduler implementation; it
	// satisfies the scheduler.Scheduler interface used internally.
	Scheduler = serial.Scheduler
	Observer  = serial.Observer
)

// NewTransactionPair and NewBatchPair wrap a wire-already-encoded
// transaction/batch payload for scheduling.
func NewTransactionPair(headerSignature string, payload []byte) TransactionPair {
	return batch.NewTransactionPair(headerSignature, payload)
}

func NewBatchPair(headerSignature string, transactions []TransactionPair) BatchPair {
	return batch.NewBatchPair(headerSignature, transactions)
}

// Valid and Invalid build completion notifications for a dispatched task.
func Valid(contextID ContextId, transactionID string) ExecutionTaskCompletionNotification {
	return scheduler.Valid(contextID, transactionID)
}

func Invalid(contextID ContextId, transactionID, reason string) ExecutionTaskCompletionNotification {
	return scheduler.Invalid(contextID, transactionID, reason)
}

// ContextManager is the ContextLifecycle implementation backing a Scheduler.
type ContextManager = txcontext.Manager

// NewContextManager builds a ContextManager reading through reader.
func NewContextManager(reader state.Reader, log *slog.Logger) *ContextManager {
	return txcontext.NewManager(reader, log)
}

// NewMemoryStateStore builds an in-memory, content-hash-addressed state
// store suitable for tests and single-process deployments.
func NewMemoryStateStore() *memory.Store {
	return memory.New()
}

// MemoryStateID reports the state ID an empty (or given) memory store
// snapshot hashes to — the root state ID to pass to NewScheduler before any
// batch has committed.
func MemoryStateID(values map[string]string) string {
	return memory.StateID(values)
}

// NewSQLiteStateStore opens (creating if necessary) a generation-pinned
// SQLite-backed state store at path.
func NewSQLiteStateStore(ctx stdcontext.Context, path string, log *slog.Logger) (*sqlite.Store, error) {
	return sqlite.Open(ctx, path, log)
}

// Option and scheduler construction.
type Option = serial.Option

func WithLogger(log *slog.Logger) Option { return serial.WithLogger(log) }

func WithObserver(observer *Observer) Option { return serial.WithObserver(observer) }

// NewObserver builds the optional telemetry/event-bus Observer a Scheduler
// can report its lifecycle through.
var NewObserver = serial.NewObserver

// NewScheduler builds a serial Scheduler rooted at stateID, whose contexts
// are created and retired through contextLifecycle.
func NewScheduler(contextLifecycle ContextLifecycle, stateID string, opts ...Option) (*Scheduler, error) {
	return serial.New(contextLifecycle, stateID, opts...)
}
