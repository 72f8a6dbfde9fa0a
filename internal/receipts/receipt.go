package receipts

import (
	"errors"

	"github.com/ledgerforge/transact/internal/state"
)

// ErrReceiptMissingTransactionID is returned by TransactionReceiptBuilder.Build
// when no transaction ID was set.
var ErrReceiptMissingTransactionID = errors.New("receipts: transaction receipt missing transaction id")

// TransactionReceipt summarizes everything a transaction did within its
// context: the state changes it staged, the events it raised, and any
// opaque data it attached. It is built once, after the transaction's
// context has been fully populated, and is immutable afterward.
type TransactionReceipt struct {
	TransactionID string
	StateChanges  []state.Change
	Events        []Event
	Data          [][]byte
}

// TransactionReceiptBuilder assembles a TransactionReceipt from a context's
// accumulated state, mirroring the context manager's own
// get_transaction_receipt construction.
type TransactionReceiptBuilder struct {
	stateChanges  []state.Change
	events        []Event
	data          [][]byte
	transactionID string
}

func NewTransactionReceiptBuilder() *TransactionReceiptBuilder {
	return &TransactionReceiptBuilder{}
}

func (b *TransactionReceiptBuilder) WithStateChanges(changes []state.Change) *TransactionReceiptBuilder {
	b.stateChanges = changes
	return b
}

func (b *TransactionReceiptBuilder) WithEvents(events []Event) *TransactionReceiptBuilder {
	b.events = events
	return b
}

func (b *TransactionReceiptBuilder) WithData(data [][]byte) *TransactionReceiptBuilder {
	b.data = data
	return b
}

func (b *TransactionReceiptBuilder) WithTransactionID(id string) *TransactionReceiptBuilder {
	b.transactionID = id
	return b
}

func (b *TransactionReceiptBuilder) Build() (TransactionReceipt, error) {
	if b.transactionID == "" {
		return TransactionReceipt{}, ErrReceiptMissingTransactionID
	}
	return TransactionReceipt{
		TransactionID: b.transactionID,
		StateChanges:  b.stateChanges,
		Events:        b.events,
		Data:          b.data,
	}, nil
}
