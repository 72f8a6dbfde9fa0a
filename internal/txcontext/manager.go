package txcontext

import (
	stdcontext "context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ledgerforge/transact/internal/receipts"
	"github.com/ledgerforge/transact/internal/state"
)

// ErrContextNotFound is wrapped by every error returned when an operation
// names a ContextId the Manager has never created (or has since dropped).
var ErrContextNotFound = errors.New("context manager: context not found")

// Manager owns the set of live contexts and the backing state.Reader they
// ultimately read through. All operations are safe for concurrent use; the
// Serial Scheduler is the sole intended caller for the mutating ones, but
// nothing here assumes single-threaded access.
type Manager struct {
	mu       sync.RWMutex
	contexts map[ContextId]*Context
	reader   state.Reader
	log      *slog.Logger
}

// NewManager constructs a Manager reading through reader for keys not found
// in any context's ancestor chain.
func NewManager(reader state.Reader, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		contexts: make(map[ContextId]*Context),
		reader:   reader,
		log:      log,
	}
}

// CreateContext creates a new Context rooted at stateID, layered on top of
// baseContexts (its ancestors, read first-to-last when a key isn't staged
// locally), and returns its ID.
func (m *Manager) CreateContext(baseContexts []ContextId, stateID string) ContextId {
	ctx := newContext(stateID, baseContexts)
	m.mu.Lock()
	m.contexts[ctx.id] = ctx
	m.mu.Unlock()
	return ctx.id
}

// DropContext removes a context and all the state staged in it. The Serial
// Scheduler calls it only for the contexts of a batch it invalidates; the
// contexts of committed batches live for the Manager's lifetime. Hosts may
// also call it to reclaim memory from contexts they know are no longer
// reachable.
func (m *Manager) DropContext(id ContextId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, id)
}

func (m *Manager) getContext(id ContextId) (*Context, error) {
	c, ok := m.contexts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, id)
	}
	return c, nil
}

// SetState stages key=value in the given context.
func (m *Manager) SetState(id ContextId, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.getContext(id)
	if err != nil {
		return err
	}
	c.SetState(key, value)
	return nil
}

// AddEvent appends event to the given context.
func (m *Manager) AddEvent(id ContextId, event receipts.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.getContext(id)
	if err != nil {
		return err
	}
	c.AddEvent(event)
	return nil
}

// AddData appends data to the given context.
func (m *Manager) AddData(id ContextId, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.getContext(id)
	if err != nil {
		return err
	}
	c.AddData(data)
	return nil
}

// GetTransactionReceipt builds a TransactionReceipt from everything staged
// in the given context so far.
func (m *Manager) GetTransactionReceipt(id ContextId, transactionID string) (receipts.TransactionReceipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, err := m.getContext(id)
	if err != nil {
		return receipts.TransactionReceipt{}, err
	}
	receipt, err := receipts.NewTransactionReceiptBuilder().
		WithStateChanges(append([]state.Change(nil), c.stateChanges...)).
		WithEvents(append([]receipts.Event(nil), c.events...)).
		WithData(append([][]byte(nil), c.data...)).
		WithTransactionID(transactionID).
		Build()
	if err != nil {
		return receipts.TransactionReceipt{}, fmt.Errorf("context manager: building receipt: %w", err)
	}
	return receipt, nil
}

// KeyValue is one resolved key, returned by Get. A key never found anywhere
// in the ancestor chain or backing state is simply omitted from Get's
// result, so every returned KeyValue carries a value; there is no "found
// but no value" entry, since a deleted key's host context stops the chain
// without producing a value of its own (see Context.DeleteState).
type KeyValue struct {
	Key   string
	Value string
}

// Get resolves keys against the given context: each key is looked up in the
// context itself, then its ancestors breadth-first, then (if nothing in the
// chain has an opinion) the backing state.Reader pinned to whichever
// context the walk ended on. Results are returned in the reverse of the
// input key order — keys are resolved last-to-first, and appended to the
// result in that same processing order — matching the context manager this
// module is ported from; callers should not assume input order is
// preserved. A key deleted anywhere along the chain (so some ancestor's
// live set has an opinion but no current value) halts the walk for that key
// without contributing a result, rather than falling through to an older
// ancestor or backing state.
func (m *Manager) Get(ctx stdcontext.Context, id ContextId, keys []string) ([]KeyValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []KeyValue
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]

		start, err := m.getContext(id)
		if err != nil {
			return nil, err
		}

		current := start
		queue := make([]*Context, 0, len(start.baseContexts))
		for _, bid := range start.baseContexts {
			bc, err := m.getContext(bid)
			if err != nil {
				return nil, err
			}
			queue = append(queue, bc)
		}

		if !current.Contains(key) && len(queue) > 0 {
			for len(queue) > 0 {
				next := queue[0]
				queue = queue[1:]
				current = next
				if next.Contains(key) {
					break
				}
				for _, bid := range next.baseContexts {
					bc, err := m.getContext(bid)
					if err != nil {
						return nil, err
					}
					queue = append(queue, bc)
				}
			}
		}

		if current.Contains(key) {
			if v, ok := current.GetState(key); ok {
				results = append(results, KeyValue{Key: key, Value: v})
			}
			continue
		}

		values, err := m.reader.Get(ctx, current.stateID, []string{key})
		if err != nil {
			return nil, fmt.Errorf("context manager: reading backing state: %w", err)
		}
		if v, ok := values[key]; ok {
			results = append(results, KeyValue{Key: key, Value: v})
		}
	}
	return results, nil
}

// DeleteState stages a delete of key in the given context and returns the
// value it had before the delete, if the context's own ancestor chain (or,
// failing that, backing state pinned to the context's own state ID) had one.
// The delete is staged in the named context regardless of where the prior
// value was found, exactly as SetState stages in the named context alone —
// ancestors are only consulted to determine what value to return, never
// mutated.
func (m *Manager) DeleteState(ctx stdcontext.Context, id ContextId, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	origin, err := m.getContext(id)
	if err != nil {
		return "", false, err
	}

	hadLocal := origin.Contains(key)
	if v, ok := origin.DeleteState(key); ok {
		return v, true, nil
	}
	if hadLocal {
		// The context's own most recent change to key was already a Delete.
		return "", false, nil
	}

	var containing *Context
	queue := make([]*Context, 0, len(origin.baseContexts))
	for _, bid := range origin.baseContexts {
		bc, err := m.getContext(bid)
		if err != nil {
			return "", false, err
		}
		queue = append(queue, bc)
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next.Contains(key) {
			containing = next
			break
		}
		for _, bid := range next.baseContexts {
			bc, err := m.getContext(bid)
			if err != nil {
				return "", false, err
			}
			queue = append(queue, bc)
		}
	}

	if containing != nil {
		if v, ok := containing.GetState(key); ok {
			return v, true, nil
		}
		return "", false, nil
	}

	values, err := m.reader.Get(ctx, origin.stateID, []string{key})
	if err != nil {
		return "", false, fmt.Errorf("context manager: reading backing state: %w", err)
	}
	if v, ok := values[key]; ok {
		return v, true, nil
	}
	return "", false, nil
}
