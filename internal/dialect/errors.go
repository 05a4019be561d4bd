package dialect

import (
	"errors"
	"fmt"

	"schemaddl/internal/core"
)

var (
	// ErrUnsupportedOperation is matched by every UnsupportedOperationError.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrUnknownDialect is returned when no dialect is registered under a name.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrInvalidRequest is returned for change requests missing a descriptor.
	ErrInvalidRequest = errors.New("invalid change request")
)

// UnsupportedOperationError is returned when a dialect cannot express an
// operation. It is a caller error: the request should not have been made
// for this dialect, so it is never retried.
type UnsupportedOperationError struct {
	Operation core.Operation
	Dialect   core.Dialect
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is unsupported in %s", e.Operation, e.Dialect)
}

// Is makes errors.Is(err, ErrUnsupportedOperation) work.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}
