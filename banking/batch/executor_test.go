//go:build unit

package batch_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/lucidfin/lib-banking/banking/account"
	"github.com/lucidfin/lib-banking/banking/batch"
	constant "github.com/lucidfin/lib-banking/banking/constants"
	"github.com/lucidfin/lib-banking/banking/registry"
)

// newFundedRegistry creates accounts 1..n holding the given balance each.
func newFundedRegistry(t *testing.T, n int64, balance decimal.Decimal) *registry.Registry {
	t.Helper()

	reg := registry.New()
	for id := int64(1); id <= n; id++ {
		_, err := reg.Create(id, balance)
		require.NoError(t, err)
	}

	return reg
}

func TestExecute_EmptyBatch(t *testing.T) {
	t.Parallel()

	exec := batch.NewExecutor()

	require.NoError(t, exec.Execute(context.Background(), nil))
	assert.Equal(t, batch.StateCompleted, exec.State())
}

func TestExecute_NewExecutorIsIdle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, batch.StateIdle, batch.NewExecutor().State())
}

func TestExecute_RandomDepositsSumExactly(t *testing.T) {
	t.Parallel()

	const ops = 5000

	reg := newFundedRegistry(t, 5, decimal.NewFromInt(1000))

	operations := make([]batch.Operation, 0, ops)
	expected := decimal.NewFromInt(5000)

	for range ops {
		target, err := reg.Get(rand.Int64N(5) + 1)
		require.NoError(t, err)

		// cents in (0, 100) exclusive
		amount := decimal.New(rand.Int64N(9999)+1, -2)
		expected = expected.Add(amount)

		op, err := batch.NewDeposit(target, amount)
		require.NoError(t, err)

		operations = append(operations, op)
	}

	exec := batch.NewExecutor()
	require.NoError(t, exec.Execute(context.Background(), operations))

	assert.Equal(t, batch.StateCompleted, exec.State())
	assert.True(t, reg.TotalBalance().Equal(expected),
		"got %s want %s", reg.TotalBalance(), expected)
}

func TestExecute_RandomTransfersConserveMoney(t *testing.T) {
	t.Parallel()

	const ops = 5000

	reg := newFundedRegistry(t, 5, decimal.NewFromInt(1000))

	operations := make([]batch.Operation, 0, ops)

	for range ops {
		sourceID := rand.Int64N(5) + 1

		destinationID := rand.Int64N(5) + 1
		for destinationID == sourceID {
			destinationID = rand.Int64N(5) + 1
		}

		source, err := reg.Get(sourceID)
		require.NoError(t, err)

		destination, err := reg.Get(destinationID)
		require.NoError(t, err)

		// cents in (0, 50) exclusive
		amount := decimal.New(rand.Int64N(4999)+1, -2)

		op, err := batch.NewTransfer(source, destination, amount)
		require.NoError(t, err)

		operations = append(operations, op)
	}

	exec := batch.NewExecutor()
	require.NoError(t, exec.Execute(context.Background(), operations))

	assert.Equal(t, batch.StateCompleted, exec.State())
	assert.True(t, reg.TotalBalance().Equal(decimal.NewFromInt(5000)),
		"money not conserved: %s", reg.TotalBalance())

	for _, acc := range reg.All() {
		assert.False(t, acc.Balance().IsNegative(),
			"account %d went negative: %s", acc.ID(), acc.Balance())
	}
}

func TestExecute_ConcurrentWithdrawalsDrainExactly(t *testing.T) {
	t.Parallel()

	const ops = 1000

	acc, err := account.New(1, decimal.NewFromInt(ops))
	require.NoError(t, err)

	one := decimal.NewFromInt(1)

	operations := make([]batch.Operation, 0, ops)
	for range ops {
		op, opErr := batch.NewWithdraw(acc, one)
		require.NoError(t, opErr)

		operations = append(operations, op)
	}

	exec := batch.NewExecutor()
	require.NoError(t, exec.Execute(context.Background(), operations))

	assert.Equal(t, batch.StateCompleted, exec.State())
	assert.True(t, acc.Balance().IsZero(), "got %s want 0", acc.Balance())
}

func TestExecute_InsufficientFundsIsNotAFailure(t *testing.T) {
	t.Parallel()

	acc, err := account.New(1, decimal.NewFromInt(10))
	require.NoError(t, err)

	op, err := batch.NewWithdraw(acc, decimal.NewFromInt(1000))
	require.NoError(t, err)

	exec := batch.NewExecutor()
	require.NoError(t, exec.Execute(context.Background(), []batch.Operation{op}))

	assert.Equal(t, batch.StateCompleted, exec.State())
	assert.True(t, acc.Balance().Equal(decimal.NewFromInt(10)))
}

func TestExecute_TaskFailureKeepsSuccessfulOperations(t *testing.T) {
	t.Parallel()

	acc, err := account.New(1, decimal.NewFromInt(100))
	require.NoError(t, err)

	deposit, err := batch.NewDeposit(acc, decimal.NewFromInt(50))
	require.NoError(t, err)

	// zero-value descriptor has no bound account and must fail its task
	operations := []batch.Operation{deposit, {}}

	exec := batch.NewExecutor()

	err = exec.Execute(context.Background(), operations)
	require.Error(t, err)
	assert.ErrorIs(t, err, constant.ErrBatchFailure)
	assert.ErrorIs(t, err, constant.ErrNilAccount)

	assert.Equal(t, batch.StateCompletedWithFailures, exec.State())
	assert.True(t, acc.Balance().Equal(decimal.NewFromInt(150)),
		"successful deposit must not be rolled back")
}

func TestExecute_ReusableAcrossBatches(t *testing.T) {
	t.Parallel()

	acc, err := account.New(1, decimal.NewFromInt(100))
	require.NoError(t, err)

	exec := batch.NewExecutor()

	failingErr := exec.Execute(context.Background(), []batch.Operation{{}})
	require.ErrorIs(t, failingErr, constant.ErrBatchFailure)
	require.Equal(t, batch.StateCompletedWithFailures, exec.State())

	deposit, err := batch.NewDeposit(acc, decimal.NewFromInt(25))
	require.NoError(t, err)

	require.NoError(t, exec.Execute(context.Background(), []batch.Operation{deposit}))
	assert.Equal(t, batch.StateCompleted, exec.State())
	assert.True(t, acc.Balance().Equal(decimal.NewFromInt(125)))
}

func TestExecute_PingPongTransfersTerminate(t *testing.T) {
	t.Parallel()

	const ops = 2000

	reg := newFundedRegistry(t, 2, decimal.NewFromInt(1000))

	first, err := reg.Get(1)
	require.NoError(t, err)

	second, err := reg.Get(2)
	require.NoError(t, err)

	amount := decimal.NewFromInt(5)

	operations := make([]batch.Operation, 0, ops)

	for index := range ops {
		source, destination := first, second
		if index%2 == 1 {
			source, destination = second, first
		}

		op, opErr := batch.NewTransfer(source, destination, amount)
		require.NoError(t, opErr)

		operations = append(operations, op)
	}

	exec := batch.NewExecutor()

	done := make(chan error, 1)
	go func() {
		done <- exec.Execute(context.Background(), operations)
	}()

	select {
	case execErr := <-done:
		require.NoError(t, execErr)
	case <-time.After(30 * time.Second):
		t.Fatal("batch did not terminate; lock ordering is broken")
	}

	assert.True(t, reg.TotalBalance().Equal(decimal.NewFromInt(2000)),
		"money not conserved: %s", reg.TotalBalance())
}

func TestExecute_EmitsSpanPerBatch(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	acc, err := account.New(1, decimal.NewFromInt(100))
	require.NoError(t, err)

	deposit, err := batch.NewDeposit(acc, decimal.NewFromInt(10))
	require.NoError(t, err)

	exec := batch.NewExecutor()
	exec.SetTracer(provider.Tracer("test"))

	require.NoError(t, exec.Execute(context.Background(), []batch.Operation{deposit}))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "batch.execute", spans[0].Name)
	assert.Equal(t, otelcodes.Ok, spans[0].Status.Code)
}

func TestExecute_SpanReportsFailure(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	exec := batch.NewExecutor()
	exec.SetTracer(provider.Tracer("test"))

	err := exec.Execute(context.Background(), []batch.Operation{{}})
	require.ErrorIs(t, err, constant.ErrBatchFailure)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, otelcodes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "failure must be recorded on the span")
}
