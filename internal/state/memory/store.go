// Package memory implements an in-memory state.Reader/state.Committer,
// mirroring the role libtransact's HashMapState test double plays in the
// original context manager test suite: a content-addressed snapshot store
// good enough for tests and small single-process deployments.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/ledgerforge/transact/internal/state"
)

// Store is a content-hash-addressed, in-memory implementation of
// state.Reader and state.Committer. Each commit produces a new immutable
// snapshot keyed by the hash of its resulting key/value set, so two commits
// that land on the same state always share a stateID.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]map[string]string
}

// New returns a Store seeded with the empty snapshot.
func New() *Store {
	s := &Store{snapshots: make(map[string]map[string]string)}
	s.snapshots[hashOf(nil)] = map[string]string{}
	return s
}

// StateID returns the content-hash identifier for the given key/value set,
// without storing anything. Used by callers (tests, mainly) that need to
// know a snapshot's ID before it has been committed.
func StateID(values map[string]string) string {
	return hashOf(values)
}

// Get implements state.Reader.
func (s *Store) Get(_ context.Context, stateID string, keys []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[stateID]
	if !ok {
		return nil, state.NewReadError(stateID, fmt.Errorf("unknown state id"))
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := snapshot[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Commit implements state.Committer: it applies changes on top of base and
// returns the resulting snapshot's content-hash stateID, storing the new
// snapshot so later Get calls can resolve it.
func (s *Store) Commit(_ context.Context, base string, changes []state.Change) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseSnapshot, ok := s.snapshots[base]
	if !ok {
		return "", state.NewReadError(base, fmt.Errorf("unknown base state id"))
	}

	next := make(map[string]string, len(baseSnapshot))
	for k, v := range baseSnapshot {
		next[k] = v
	}
	for _, c := range changes {
		switch c.Kind {
		case state.ChangeSet:
			next[c.Key] = c.Value
		case state.ChangeDelete:
			delete(next, c.Key)
		}
	}

	id := hashOf(next)
	s.snapshots[id] = next
	return id, nil
}

// hashOf computes the content-hash state ID for a key/value set: keys are
// sorted for a stable encoding, then SHA-256'd.
func hashOf(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(values[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
