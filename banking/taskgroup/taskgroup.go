package taskgroup

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrPanicRecovered is returned when a task in the group panics.
var ErrPanicRecovered = errors.New("taskgroup: panic recovered")

// Group manages a set of independent goroutines. Tasks never cancel each
// other: a failing task is recorded and its siblings keep running. Wait
// blocks until every started task has finished.
//
// A Group must not be reused after Wait returns.
type Group struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   []error
	logger *zap.Logger
}

// New creates an empty group.
func New() *Group {
	return &Group{logger: zap.NewNop()}
}

// SetLogger sets an optional logger for panic recovery observability.
func (grp *Group) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}

	grp.logger = logger
}

// Go starts fn in a new goroutine. A non-nil return value is recorded and
// later reported by Wait; a panic is recovered at the task boundary,
// converted into an error wrapping ErrPanicRecovered, and recorded the same
// way. Neither outcome affects other tasks in the group.
func (grp *Group) Go(fn func() error) {
	grp.wg.Add(1)

	go func() {
		defer grp.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				grp.logger.Error("panic recovered in task",
					zap.Any("panic", recovered),
					zap.ByteString("stack", debug.Stack()),
				)

				grp.record(fmt.Errorf("%w: %v", ErrPanicRecovered, recovered))
			}
		}()

		if err := fn(); err != nil {
			grp.record(err)
		}
	}()
}

// Wait blocks until all tasks started with Go have finished, then returns
// every recorded error joined into one, or nil when all tasks succeeded.
func (grp *Group) Wait() error {
	grp.wg.Wait()

	grp.mu.Lock()
	defer grp.mu.Unlock()

	return errors.Join(grp.errs...)
}

func (grp *Group) record(err error) {
	grp.mu.Lock()
	defer grp.mu.Unlock()

	grp.errs = append(grp.errs, err)
}
