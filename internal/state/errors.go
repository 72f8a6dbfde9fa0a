package state

import (
	"errors"
	"fmt"
)

// ErrStateRead is the sentinel wrapped by every error a Reader implementation
// returns, so callers can use errors.Is(err, state.ErrStateRead) regardless
// of backend.
var ErrStateRead = errors.New("state: read failed")

// NewReadError wraps a backend-specific error with the state ID that was
// being read, in the teacher's fmt.Errorf("...: %w", err) convention.
func NewReadError(stateID string, cause error) error {
	return fmt.Errorf("%w: state %q: %w", ErrStateRead, stateID, cause)
}
