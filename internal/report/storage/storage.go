package storage

import (
	"fmt"
)

// Error marks failures of the artifact store so callers can tell them from
// aggregation or rendering failures.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("report storage %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StorageError() bool {
	return true
}

func wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Name: name, Err: err}
}
