// Package account provides a lock-protected monetary balance cell.
//
// Every operation runs inside the account's exclusive guard, so a reader
// never observes a partially-applied deposit, withdrawal, or transfer.
// Two-account transfers acquire both guards in ascending-id order, which
// makes circular wait between any pair of accounts impossible.
package account
