// Package guards holds the pre-commit invariant checks. Guards run after
// the row policy allowed a mutation and before it is applied, and they
// bind every principal: an administrator who passes the policy layer is
// still subject to them.
package guards

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is the sentinel every violation unwraps to.
var ErrInvariantViolation = errors.New("invariant violation")

// InvariantViolationError reports which invariant a mutation would break.
type InvariantViolationError struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Invariant, e.Detail)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

func violationf(invariant, format string, args ...any) error {
	return &InvariantViolationError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
