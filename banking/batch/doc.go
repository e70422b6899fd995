// Package batch provides the operation descriptor and the concurrent batch
// executor.
//
// An Operation is an immutable description of one deposit, withdrawal, or
// transfer, validated at construction and bound to the account(s) it
// targets. The Executor fans a batch out to one goroutine per operation,
// joins on all of them, and reports a single aggregate error when any task
// failed. Operations that succeeded are never rolled back.
package batch
