package txcontext

import (
	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/state"
)

// Context is a single transaction's staged read/write set: a live view of
// the keys it has set or deleted, plus the full ordered change log (used
// for the receipt), the events it raised, and the opaque data it attached.
// It also carries the state ID it reads through to, and the IDs of any
// contexts it was built on top of (its ancestors).
type Context struct {
	id           ContextId
	baseContexts []ContextId
	stateID      string
	stateChanges []state.Change
	// changes records the most recent Set or Delete staged directly in this
	// context, keyed by key. A Delete leaves an entry here (a tombstone)
	// distinct from the key never having been touched at all — that
	// distinction is what stops the ancestor walk from falling through to an
	// older value a nearer context has already deleted.
	changes map[string]state.Change
	events  []receipts.Event
	data    [][]byte
}

func newContext(stateID string, baseContexts []ContextId) *Context {
	bases := make([]ContextId, len(baseContexts))
	copy(bases, baseContexts)
	return &Context{
		id:           NewContextId(),
		baseContexts: bases,
		stateID:      stateID,
		changes:      make(map[string]state.Change),
	}
}

func (c *Context) ID() ContextId { return c.id }

func (c *Context) BaseContexts() []ContextId { return c.baseContexts }

func (c *Context) StateID() string { return c.stateID }

// StateChanges returns the full ordered log of Set/Delete operations
// applied to this context, in call order — the material a receipt is built
// from.
func (c *Context) StateChanges() []state.Change { return c.stateChanges }

func (c *Context) Events() []receipts.Event { return c.events }

func (c *Context) Data() [][]byte { return c.data }

// Contains reports whether key has any opinion staged directly in this
// context — a Set or a Delete — it does not consult ancestors or backing
// state. A Delete counts: a tombstone is itself an opinion, and callers
// walking the ancestor chain must stop at it rather than treating the key
// as untouched here.
func (c *Context) Contains(key string) bool {
	_, ok := c.changes[key]
	return ok
}

// GetState returns key's live value staged directly in this context. It
// reports ok=false both when the key was never touched here and when this
// context's most recent opinion on it was a Delete — callers that need to
// tell those two cases apart use Contains alongside GetState.
func (c *Context) GetState(key string) (string, bool) {
	change, ok := c.changes[key]
	if !ok || change.Kind == state.ChangeDelete {
		return "", false
	}
	return change.Value, true
}

// SetState stages key=value directly in this context.
func (c *Context) SetState(key, value string) {
	change := state.Change{Kind: state.ChangeSet, Key: key, Value: value}
	c.changes[key] = change
	c.stateChanges = append(c.stateChanges, change)
}

// DeleteState stages a tombstone for key in this context and returns the
// value it shadowed, if this context had a live (non-deleted) value staged
// for it already. A Delete entry is always appended to the change log, even
// when the key wasn't locally live — so a receipt still reflects that the
// transaction deleted a key it inherited from an ancestor or backing state,
// even though resolving that prior value is the ContextManager's job, not
// this context's.
func (c *Context) DeleteState(key string) (string, bool) {
	prev, hadValue := c.GetState(key)
	change := state.Change{Kind: state.ChangeDelete, Key: key}
	c.changes[key] = change
	c.stateChanges = append(c.stateChanges, change)
	return prev, hadValue
}

func (c *Context) AddEvent(e receipts.Event) {
	c.events = append(c.events, e)
}

func (c *Context) AddData(d []byte) {
	c.data = append(c.data, d)
}
