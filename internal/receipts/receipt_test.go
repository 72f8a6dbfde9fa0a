package receipts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/transact/internal/state"
)

func TestTransactionReceiptBuilderRequiresTransactionID(t *testing.T) {
	_, err := NewTransactionReceiptBuilder().Build()
	assert.ErrorIs(t, err, ErrReceiptMissingTransactionID)
}

func TestTransactionReceiptBuilderAssemblesFields(t *testing.T) {
	changes := []state.Change{{Kind: state.ChangeSet, Key: "k1", Value: "v1"}}
	events := []Event{{EventType: "deposit"}}
	data := [][]byte{[]byte("opaque")}

	receipt, err := NewTransactionReceiptBuilder().
		WithTransactionID("txn-1").
		WithStateChanges(changes).
		WithEvents(events).
		WithData(data).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "txn-1", receipt.TransactionID)
	assert.Equal(t, changes, receipt.StateChanges)
	assert.Equal(t, events, receipt.Events)
	assert.Equal(t, data, receipt.Data)
}
