package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	constant "github.com/lucidfin/lib-banking/banking/constants"
	"github.com/lucidfin/lib-banking/banking/taskgroup"
)

// ErrExecutorBusy rejects an Execute call that overlaps a batch already
// running on the same instance.
var ErrExecutorBusy = errors.New("batch: executor is already running a batch")

// State is the executor's lifecycle position.
type State uint32

const (
	// StateIdle means no batch has been submitted yet.
	StateIdle State = iota
	// StateRunning means a batch is currently executing.
	StateRunning
	// StateCompleted means the last batch finished with every task
	// succeeding.
	StateCompleted
	// StateCompletedWithFailures means at least one task of the last batch
	// raised an error.
	StateCompletedWithFailures
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCompletedWithFailures:
		return "completed_with_failures"
	default:
		return "unknown"
	}
}

// Executor runs batches of operations, one goroutine per operation, and
// joins on all of them before reporting. No per-batch state survives into
// the next batch, so an instance is reusable once a batch reaches a
// terminal state; overlapping Execute calls on one instance are rejected
// with ErrExecutorBusy rather than interleaved.
type Executor struct {
	state  atomic.Uint32
	logger *zap.Logger
	tracer trace.Tracer
}

// NewExecutor creates an idle executor with a no-op logger and tracer.
func NewExecutor() *Executor {
	return &Executor{
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("lib-banking/batch"),
	}
}

// SetLogger sets an optional logger for per-task failures and batch
// summaries.
func (exec *Executor) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}

	exec.logger = logger
}

// SetTracer sets an optional tracer; each Execute call opens one span.
func (exec *Executor) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		return
	}

	exec.tracer = tracer
}

// State returns the executor's current lifecycle state.
func (exec *Executor) State() State {
	return State(exec.state.Load())
}

// Execute runs every operation in its own goroutine and blocks until all of
// them have finished. Operations are independent: an insufficient-funds
// outcome is not a failure, a failing task never cancels its siblings, and
// operations that succeeded are not rolled back when others fail. When one
// or more tasks raised an error, Execute returns, after the full join, a
// single error wrapping constant.ErrBatchFailure together with every task
// error.
func (exec *Executor) Execute(ctx context.Context, operations []Operation) error {
	if !exec.begin() {
		return ErrExecutorBusy
	}

	batchID := uuid.NewString()

	_, span := exec.tracer.Start(ctx, "batch.execute", trace.WithAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.operations", len(operations)),
	))
	defer span.End()

	logger := exec.logger.With(zap.String("batch_id", batchID))

	start := time.Now()

	grp := taskgroup.New()
	grp.SetLogger(logger)

	for _, op := range operations {
		grp.Go(func() error {
			return op.apply(logger)
		})
	}

	if err := grp.Wait(); err != nil {
		exec.state.Store(uint32(StateCompletedWithFailures))

		span.RecordError(err)
		span.SetStatus(codes.Error, "batch completed with failures")

		logger.Error("batch completed with failures",
			zap.Int("operations", len(operations)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)

		return fmt.Errorf("%w: %w", constant.ErrBatchFailure, err)
	}

	exec.state.Store(uint32(StateCompleted))
	span.SetStatus(codes.Ok, "")

	logger.Info("batch completed",
		zap.Int("operations", len(operations)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// begin moves the executor into StateRunning unless a batch is already
// running. Idle and both terminal states are valid starting points.
func (exec *Executor) begin() bool {
	for {
		current := exec.state.Load()
		if State(current) == StateRunning {
			return false
		}

		if exec.state.CompareAndSwap(current, uint32(StateRunning)) {
			return true
		}
	}
}
