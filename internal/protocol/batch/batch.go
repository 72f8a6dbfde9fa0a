// Package batch defines the opaque wire shapes the scheduler dispatches:
// a BatchPair is an ordered list of TransactionPairs, each wrapping a header
// signature plus an opaque payload. This package deliberately does not know
// how to encode or decode the payload — that's a wire-format concern
// upstream of the scheduler, which only needs a header signature to key
// ordering and duplicate detection by.
package batch

// TransactionPair wraps a transaction's header signature and its opaque,
// already-encoded payload.
type TransactionPair struct {
	headerSignature string
	payload         []byte
}

// NewTransactionPair wraps a header signature and payload. The payload is
// not copied; callers should treat it as immutable once wrapped.
func NewTransactionPair(headerSignature string, payload []byte) TransactionPair {
	return TransactionPair{headerSignature: headerSignature, payload: payload}
}

func (t TransactionPair) HeaderSignature() string { return t.headerSignature }

func (t TransactionPair) Payload() []byte { return t.payload }

// BatchPair wraps a batch's header signature and its ordered transactions.
type BatchPair struct {
	headerSignature string
	transactions    []TransactionPair
}

// NewBatchPair wraps a header signature and an ordered transaction list.
func NewBatchPair(headerSignature string, transactions []TransactionPair) BatchPair {
	txns := make([]TransactionPair, len(transactions))
	copy(txns, transactions)
	return BatchPair{headerSignature: headerSignature, transactions: txns}
}

func (b BatchPair) HeaderSignature() string { return b.headerSignature }

func (b BatchPair) Transactions() []TransactionPair { return b.transactions }
