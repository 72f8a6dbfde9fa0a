package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBatchPairCopiesTransactionSlice(t *testing.T) {
	txns := []TransactionPair{NewTransactionPair("txn-1", []byte("payload-1"))}
	b := NewBatchPair("batch-1", txns)

	// Mutating the caller's slice after construction must not affect the
	// BatchPair's view of its transactions.
	txns[0] = NewTransactionPair("txn-2", []byte("payload-2"))

	assert.Equal(t, "txn-1", b.Transactions()[0].HeaderSignature())
}

func TestTransactionPairAccessors(t *testing.T) {
	txn := NewTransactionPair("txn-1", []byte("payload"))
	assert.Equal(t, "txn-1", txn.HeaderSignature())
	assert.Equal(t, []byte("payload"), txn.Payload())
}

func TestBatchPairAccessors(t *testing.T) {
	b := NewBatchPair("batch-1", []TransactionPair{
		NewTransactionPair("txn-1", []byte("a")),
		NewTransactionPair("txn-2", []byte("b")),
	})
	assert.Equal(t, "batch-1", b.HeaderSignature())
	assert.Len(t, b.Transactions(), 2)
}
