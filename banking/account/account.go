package account

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	constant "github.com/lucidfin/lib-banking/banking/constants"
)

// Account is a balance cell owned by exactly one id for the process lifetime.
// The zero value is not usable; construct with New.
//
// All methods are safe for concurrent use. The balance is mutated only while
// the account's guard is held, and the guard is held for the full duration of
// each call, so concurrent operations interleave at whole-operation
// granularity.
type Account struct {
	id int64

	mu      sync.Mutex
	balance decimal.Decimal
}

// New creates an account with the given id and a validated initial balance.
// A negative initial balance is rejected with constant.ErrInvalidAmount.
func New(id int64, initialBalance decimal.Decimal) (*Account, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s is negative", constant.ErrInvalidAmount, initialBalance)
	}

	return &Account{id: id, balance: initialBalance}, nil
}

// ID returns the account's immutable identifier.
func (acc *Account) ID() int64 {
	return acc.id
}

// Balance returns the current balance, read under the account's guard so the
// value is always a fully-applied state, never a mid-operation one.
func (acc *Account) Balance() decimal.Decimal {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	return acc.balance
}

// Deposit atomically adds amount to the balance.
// A non-positive amount is rejected with constant.ErrInvalidAmount before the
// guard is taken.
func (acc *Account) Deposit(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	acc.balance = acc.balance.Add(amount)

	return nil
}

// Withdraw atomically subtracts amount from the balance when funds suffice.
// Insufficient funds is a normal outcome reported as false, not an error; the
// funds check and the subtraction run inside one critical section so the
// balance can never go negative.
func (acc *Account) Withdraw(amount decimal.Decimal) (bool, error) {
	if err := validateAmount(amount); err != nil {
		return false, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if acc.balance.LessThan(amount) {
		return false, nil
	}

	acc.balance = acc.balance.Sub(amount)

	return true, nil
}

// TransferTo atomically moves amount from this account to destination.
// Either both balances change or neither does; no intermediate state is
// observable from any other goroutine.
//
// Both guards are acquired in ascending-id order regardless of which account
// initiated the call. Since ids are unique and self-transfers are rejected,
// every goroutine that needs the same pair takes the locks in the same
// relative order and deadlock cannot occur.
func (acc *Account) TransferTo(destination *Account, amount decimal.Decimal) (bool, error) {
	if err := validateAmount(amount); err != nil {
		return false, err
	}

	if destination == nil {
		return false, fmt.Errorf("%w: transfer destination", constant.ErrNilAccount)
	}

	if acc == destination || acc.id == destination.id {
		return false, fmt.Errorf("%w: account %d", constant.ErrSameAccount, acc.id)
	}

	first, second := acc, destination
	if destination.id < acc.id {
		first, second = destination, acc
	}

	first.mu.Lock()
	defer first.mu.Unlock()

	second.mu.Lock()
	defer second.mu.Unlock()

	if acc.balance.LessThan(amount) {
		return false, nil
	}

	acc.balance = acc.balance.Sub(amount)
	destination.balance = destination.balance.Add(amount)

	return true, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount %s must be positive", constant.ErrInvalidAmount, amount)
	}

	return nil
}
