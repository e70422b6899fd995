package batch

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lucidfin/lib-banking/banking/account"
	constant "github.com/lucidfin/lib-banking/banking/constants"
)

// Kind identifies the operation an Operation descriptor performs.
type Kind uint8

const (
	// KindDeposit adds the amount to the target account.
	KindDeposit Kind = iota
	// KindWithdraw subtracts the amount from the target account when funds
	// suffice.
	KindWithdraw
	// KindTransfer moves the amount from the source account to the
	// destination account when funds suffice.
	KindTransfer
)

// String returns the kind's lowercase name.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdraw:
		return "withdraw"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Operation is an immutable descriptor of one account mutation. It holds
// non-owning references to the registry's accounts and is consumed by
// Executor.Execute. Construct with NewDeposit, NewWithdraw, or NewTransfer;
// the zero value fails when executed.
type Operation struct {
	kind        Kind
	source      *account.Account
	destination *account.Account
	amount      decimal.Decimal
}

// NewDeposit builds a deposit descriptor.
// The amount must be positive and the target non-nil.
func NewDeposit(target *account.Account, amount decimal.Decimal) (Operation, error) {
	if err := validate(KindDeposit, target, nil, amount); err != nil {
		return Operation{}, err
	}

	return Operation{kind: KindDeposit, source: target, amount: amount}, nil
}

// NewWithdraw builds a withdrawal descriptor.
// The amount must be positive and the target non-nil.
func NewWithdraw(target *account.Account, amount decimal.Decimal) (Operation, error) {
	if err := validate(KindWithdraw, target, nil, amount); err != nil {
		return Operation{}, err
	}

	return Operation{kind: KindWithdraw, source: target, amount: amount}, nil
}

// NewTransfer builds a transfer descriptor.
// The amount must be positive, both endpoints non-nil, and the source
// distinct from the destination.
func NewTransfer(source, destination *account.Account, amount decimal.Decimal) (Operation, error) {
	if err := validate(KindTransfer, source, destination, amount); err != nil {
		return Operation{}, err
	}

	return Operation{kind: KindTransfer, source: source, destination: destination, amount: amount}, nil
}

// Kind returns the operation kind.
func (op Operation) Kind() Kind {
	return op.kind
}

// Amount returns the operation amount fixed at construction.
func (op Operation) Amount() decimal.Decimal {
	return op.amount
}

// Source returns the account being operated on, or the source endpoint for
// transfers.
func (op Operation) Source() *account.Account {
	return op.source
}

// Destination returns the destination endpoint for transfers and nil for
// other kinds.
func (op Operation) Destination() *account.Account {
	return op.destination
}

// apply runs the operation against its bound account(s). Insufficient funds
// is a normal outcome, logged at debug level and not reported as an error.
func (op Operation) apply(logger *zap.Logger) error {
	if op.source == nil {
		return fmt.Errorf("%w: %s operation has no account", constant.ErrNilAccount, op.kind)
	}

	switch op.kind {
	case KindDeposit:
		return op.source.Deposit(op.amount)

	case KindWithdraw:
		ok, err := op.source.Withdraw(op.amount)
		if err != nil {
			return err
		}

		if !ok {
			logger.Debug("withdrawal rejected for insufficient funds",
				zap.Int64("account_id", op.source.ID()),
				zap.String("amount", op.amount.String()),
			)
		}

		return nil

	case KindTransfer:
		ok, err := op.source.TransferTo(op.destination, op.amount)
		if err != nil {
			return err
		}

		if !ok {
			logger.Debug("transfer rejected for insufficient funds",
				zap.Int64("source_id", op.source.ID()),
				zap.Int64("destination_id", op.destination.ID()),
				zap.String("amount", op.amount.String()),
			)
		}

		return nil

	default:
		return fmt.Errorf("unknown operation kind %d", op.kind)
	}
}

func validate(kind Kind, source, destination *account.Account, amount decimal.Decimal) error {
	if source == nil {
		return fmt.Errorf("%w: %s source", constant.ErrNilAccount, kind)
	}

	if kind == KindTransfer {
		if destination == nil {
			return fmt.Errorf("%w: %s destination", constant.ErrNilAccount, kind)
		}

		if source == destination || source.ID() == destination.ID() {
			return fmt.Errorf("%w: account %d", constant.ErrSameAccount, source.ID())
		}
	}

	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount %s must be positive", constant.ErrInvalidAmount, amount)
	}

	return nil
}
