// services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmployeeNotFound is returned when a referenced employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrHistoryNotFound is returned when a referenced points history record
	// does not exist.
	ErrHistoryNotFound = errors.New("points history record not found")

	// ErrNegativeBalance is returned when editing or deleting a history record
	// would drive an employee's cached total below zero. Callers match on the
	// "negative balance" substring to show a specific explanation.
	ErrNegativeBalance = errors.New("would result in negative balance")

	// ErrValidation is the base error for malformed input, rejected before any
	// transaction begins.
	ErrValidation = errors.New("validation failed")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
