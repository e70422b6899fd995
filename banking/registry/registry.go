package registry

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lucidfin/lib-banking/banking/account"
	constant "github.com/lucidfin/lib-banking/banking/constants"
)

// Registry owns the id→account mapping. Accounts are created through the
// registry and are never removed during the process lifetime.
//
// All methods are safe for concurrent use. Lookups never block on unrelated
// creations beyond the duration of the map write itself.
type Registry struct {
	mu       sync.RWMutex
	accounts map[int64]*account.Account
	logger   *zap.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		accounts: make(map[int64]*account.Account),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets an optional logger for account lifecycle observability.
func (reg *Registry) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}

	reg.logger = logger
}

// Create constructs and stores a new account.
// Validation failures surface before any state is mutated; the duplicate
// check and the insert run under one write lock, so exactly one creation per
// id ever succeeds even under concurrent callers.
func (reg *Registry) Create(id int64, initialBalance decimal.Decimal) (*account.Account, error) {
	acc, err := account.New(id, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("create account %d: %w", id, err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.accounts[id]; exists {
		return nil, fmt.Errorf("%w: id %d", constant.ErrDuplicateAccount, id)
	}

	reg.accounts[id] = acc

	reg.logger.Debug("account created",
		zap.Int64("account_id", id),
		zap.String("initial_balance", initialBalance.String()),
	)

	return acc, nil
}

// Get returns the shared account instance registered under id.
func (reg *Registry) Get(id int64) (*account.Account, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	acc, exists := reg.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: id %d", constant.ErrAccountNotFound, id)
	}

	return acc, nil
}

// All returns a snapshot of the currently-registered accounts. Creations
// that race with the call may or may not appear in the result.
func (reg *Registry) All() []*account.Account {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	accounts := make([]*account.Account, 0, len(reg.accounts))
	for _, acc := range reg.accounts {
		accounts = append(accounts, acc)
	}

	return accounts
}

// Count returns the current number of registered accounts.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.accounts)
}

// TotalBalance sums the balance of every account in an enumeration snapshot.
// Each individual read is internally consistent, but the sum as a whole is
// not atomic across accounts: mutations racing with the aggregation can make
// the total differ from any single instant's true system balance. At
// quiescence the value is exact.
func (reg *Registry) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, acc := range reg.All() {
		total = total.Add(acc.Balance())
	}

	return total
}
