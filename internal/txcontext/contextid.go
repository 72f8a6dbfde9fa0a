// Package txcontext implements the context manager: a copy-on-write layer
// of staged state mutations over a backing state.Reader, addressed by
// ContextId and chained into ancestor DAGs so a transaction can read through
// its own pending writes into the writes of transactions scheduled before
// it. Named txcontext (not context) to avoid shadowing the standard
// library's context package, which every blocking method here also takes.
package txcontext

import "github.com/google/uuid"

// ContextId is a 128-bit identifier unique for the lifetime of the process
// that issued it, realized as a [16]byte array wrapping a UUIDv4 value.
type ContextId [16]byte

// NewContextId generates a fresh, random ContextId.
func NewContextId() ContextId {
	return ContextId(uuid.New())
}

func (c ContextId) String() string {
	return uuid.UUID(c).String()
}
