// Package taskgroup coordinates independent goroutines that must be joined.
//
// Unlike errgroup-style primitives, the first failure does not cancel the
// rest of the group: every task runs to completion and every error is
// collected, then Wait reduces the set into a single joined error. Recovered
// panics are converted into errors at the task boundary.
package taskgroup
