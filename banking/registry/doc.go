// Package registry provides the concurrent directory of accounts.
//
// Creation of an id is linearizable: at most one creator per id ever
// succeeds. Enumeration returns a snapshot and the total-balance aggregate is
// a point-in-time approximation, not a transactional one; see
// Registry.TotalBalance.
package registry
