package receipts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBuilderRequiresEventType(t *testing.T) {
	_, err := NewEventBuilder().Build()
	assert.ErrorIs(t, err, ErrEventMissingType)
}

func TestEventBuilderAssemblesFields(t *testing.T) {
	attrs := []Attribute{{Key: "amount", Value: "100"}}
	event, err := NewEventBuilder().
		WithEventType("deposit").
		WithAttributes(attrs).
		WithData([]byte("opaque")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "deposit", event.EventType)
	assert.Equal(t, attrs, event.Attributes)
	assert.Equal(t, []byte("opaque"), event.Data)
}
