package constant

import "errors"

var (
	// ErrInvalidAmount rejects a non-positive operation amount or a negative
	// initial balance.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSameAccount rejects a transfer whose source and destination are the
	// same account.
	ErrSameAccount = errors.New("transfer source and destination are the same account")
	// ErrNilAccount rejects an operation bound to a nil account reference.
	ErrNilAccount = errors.New("nil account reference")
	// ErrDuplicateAccount rejects creation of an account id that already exists.
	ErrDuplicateAccount = errors.New("account id already exists")
	// ErrAccountNotFound reports a lookup of an unregistered account id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrBatchFailure reports that at least one operation in a batch failed.
	// Operations that succeeded before the failure are not rolled back.
	ErrBatchFailure = errors.New("one or more batch operations failed")
)
