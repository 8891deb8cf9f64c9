package union

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Work is a unit of work run by a Member.
//
// The context is cancelled when the member is interrupted, either directly
// or by Union.Shutdown. Honoring it is up to the work.
type Work func(ctx context.Context) error

// Result is the outcome of one terminated member.
type Result struct {
	Name string
	Err  error
}

// Failed reports whether the member terminated with an error or panic.
func (r Result) Failed() bool {
	return r.Err != nil
}

var (
	// ErrShutdown is returned by NewMember once the union is shut down.
	ErrShutdown = errors.New("union: union is shut down")

	// ErrNilWork is returned by NewMember when the work callback is nil.
	ErrNilWork = errors.New("union: nil work")

	// ErrAlreadyStarted is returned by Member.Start on the second call.
	ErrAlreadyStarted = errors.New("union: member already started")

	// ErrInterrupted is the cancellation cause set by Member.Interrupt.
	ErrInterrupted = errors.New("union: member interrupted")
)

// Union is a named group of member goroutines.
type Union struct {
	name    string
	cfg     config
	logger  *zap.Logger
	metrics *Metrics

	created  atomic.Int64
	shutdown atomic.Bool

	// mu guards members and the shutdown check-and-register in NewMember.
	mu      sync.Mutex
	members []*Member

	resultsMu sync.Mutex
	results   []Result
}

// New creates an empty union accepting new members.
func New(name string, opts ...Option) *Union {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Union{
		name:    name,
		cfg:     cfg,
		logger:  cfg.logger.With(zap.String("union", name)),
		metrics: cfg.metrics,
	}
}

// Name returns the union name.
func (u *Union) Name() string {
	return u.name
}

// NewMember registers a member that runs work once started.
//
// The member is not started; call Member.Start. After Shutdown every call
// fails with an error matching ErrShutdown and leaves the union untouched.
func (u *Union) NewMember(work Work) (*Member, error) {
	if work == nil {
		return nil, ErrNilWork
	}

	u.mu.Lock()
	if u.shutdown.Load() {
		u.mu.Unlock()
		u.metrics.memberRejected(u.name)
		u.logger.Warn("member creation rejected", zap.Int64("total", u.created.Load()))
		return nil, errors.WithMessagef(ErrShutdown, "cannot create member in %q", u.name)
	}

	seq := u.created.Add(1) - 1
	m := newMember(u, fmt.Sprintf(u.cfg.nameFormat, u.name, seq), work)
	u.members = append(u.members, m)
	u.mu.Unlock()

	u.metrics.memberCreated(u.name)
	u.logger.Debug("member created", zap.String("member", m.name))
	return m, nil
}

// TotalSize returns how many members were ever created.
func (u *Union) TotalSize() int {
	return int(u.created.Load())
}

// ActiveSize returns how many members are started and not yet terminated.
func (u *Union) ActiveSize() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	active := 0
	for _, m := range u.members {
		if m.Alive() {
			active++
		}
	}
	return active
}

// Shutdown stops member creation and interrupts every registered member.
//
// Members that are not started yet see a cancelled context once they run.
// Shutdown does not wait; use AwaitTermination. It is safe to call more than once.
func (u *Union) Shutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()

	first := u.shutdown.CompareAndSwap(false, true)
	for _, m := range u.members {
		m.cancel(ErrShutdown)
	}

	if first {
		u.logger.Info("shutdown requested", zap.Int("members", len(u.members)))
	}
}

// IsShutdown reports whether Shutdown was called.
func (u *Union) IsShutdown() bool {
	return u.shutdown.Load()
}

// AwaitTermination blocks until every member registered at call time has terminated.
//
// Members created after the call begins are not waited upon, nor are members
// that were never started.
func (u *Union) AwaitTermination() {
	var eg errgroup.Group
	for _, m := range u.joinable() {
		eg.Go(func() error {
			<-m.done
			return nil
		})
	}
	// Joins never fail; Wait only blocks.
	_ = eg.Wait()
}

// IsFinished reports whether the union is shut down and no member is running.
// The value is a point-in-time snapshot.
func (u *Union) IsFinished() bool {
	return u.IsShutdown() && u.ActiveSize() == 0
}

// Results returns a copy of the member outcomes in termination order.
func (u *Union) Results() []Result {
	u.resultsMu.Lock()
	defer u.resultsMu.Unlock()

	out := make([]Result, len(u.results))
	copy(out, u.results)
	return out
}

func (u *Union) snapshot() []*Member {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]*Member, len(u.members))
	copy(out, u.members)
	return out
}

// joinable returns the registered members that were started.
func (u *Union) joinable() []*Member {
	u.mu.Lock()
	defer u.mu.Unlock()

	var out []*Member
	for _, m := range u.members {
		if m.started.Load() {
			out = append(out, m)
		}
	}
	return out
}

func (u *Union) memberStarted(m *Member) {
	u.metrics.memberStarted(u.name)
	u.logger.Debug("member started", zap.String("member", m.name))
}

func (u *Union) memberFinished(m *Member, err error, elapsed time.Duration) {
	u.metrics.memberFinished(u.name, err, elapsed)
	if err != nil {
		u.logger.Warn("member failed", zap.String("member", m.name), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		u.logger.Debug("member finished", zap.String("member", m.name), zap.Duration("elapsed", elapsed))
	}

	u.resultsMu.Lock()
	u.results = append(u.results, Result{Name: m.name, Err: err})
	u.resultsMu.Unlock()
}
