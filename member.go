package union

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/panics"
)

// MemberState is the lifecycle state of a Member.
type MemberState int32

const (
	StateCreated MemberState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s MemberState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PanicError carries a panic recovered from a member's work.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Member is one goroutine of a Union, created by Union.NewMember.
type Member struct {
	name  string
	work  Work
	owner *Union

	// ctx stays cancelled once interrupted, so work started later still sees it.
	ctx    context.Context
	cancel context.CancelCauseFunc

	started atomic.Bool
	state   atomic.Int32
	done    chan struct{}
}

func newMember(owner *Union, name string, work Work) *Member {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Member{
		name:   name,
		work:   work,
		owner:  owner,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Name returns the member name.
func (m *Member) Name() string {
	return m.name
}

// Start runs the member's work on a new goroutine.
func (m *Member) Start() error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.WithMessagef(ErrAlreadyStarted, "member %s", m.name)
	}

	m.state.Store(int32(StateRunning))
	m.owner.memberStarted(m)
	go m.run()
	return nil
}

// Interrupt cancels the member's context with ErrInterrupted as the cause.
// It does not stop work that ignores its context.
func (m *Member) Interrupt() {
	m.cancel(ErrInterrupted)
}

// Interrupted reports whether the member was interrupted or shut down.
func (m *Member) Interrupted() bool {
	return m.ctx.Err() != nil
}

// State returns the current lifecycle state.
func (m *Member) State() MemberState {
	return MemberState(m.state.Load())
}

// Alive reports whether the member is started and has not terminated.
func (m *Member) Alive() bool {
	return m.State() == StateRunning
}

// Done returns a channel closed once the member has terminated and its
// Result is recorded.
func (m *Member) Done() <-chan struct{} {
	return m.done
}

// Join waits for the member to terminate. It returns at once if the member
// was never started.
func (m *Member) Join() {
	if !m.started.Load() {
		return
	}
	<-m.done
}

func (m *Member) run() {
	var (
		err   error
		begin = time.Now()
	)

	defer func() {
		m.owner.memberFinished(m, err, time.Since(begin))

		if err != nil {
			m.state.Store(int32(StateFailed))
		} else {
			m.state.Store(int32(StateCompleted))
		}
		close(m.done)
	}()

	var pc panics.Catcher
	pc.Try(func() {
		err = m.work(m.ctx)
	})
	if r := pc.Recovered(); r != nil {
		err = &PanicError{Value: r.Value, Stack: r.Stack}
	}
}
