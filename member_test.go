package union

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemberStartTwiceFails(t *testing.T) {
	t.Parallel()

	u := New("pool")
	m := mustNewMember(t, u, func(context.Context) error { return nil })

	require.NoError(t, m.Start())
	err := m.Start()
	require.ErrorIs(t, err, ErrAlreadyStarted)
	require.Contains(t, err.Error(), m.Name())

	m.Join()
	require.Len(t, u.Results(), 1)
}

func TestMemberStateTransitions(t *testing.T) {
	t.Parallel()

	u := New("pool")
	release := make(chan struct{})
	m := mustNewMember(t, u, func(context.Context) error {
		<-release
		return nil
	})

	require.Equal(t, StateCreated, m.State())
	require.False(t, m.Alive())

	require.NoError(t, m.Start())
	require.Equal(t, StateRunning, m.State())
	require.True(t, m.Alive())

	close(release)
	waitClosed(t, m.Done())
	require.Equal(t, StateCompleted, m.State())
	require.False(t, m.Alive())
}

func TestMemberResultRecordedBeforeDone(t *testing.T) {
	t.Parallel()

	u := New("pool")
	m := mustNewMember(t, u, func(context.Context) error { return nil })
	require.NoError(t, m.Start())

	waitClosed(t, m.Done())
	results := u.Results()
	require.Len(t, results, 1)
	require.Equal(t, m.Name(), results[0].Name)
}

func TestMemberJoinWithoutStartReturns(t *testing.T) {
	t.Parallel()

	u := New("pool")
	m := mustNewMember(t, u, func(context.Context) error { return nil })

	done := make(chan struct{})
	go func() {
		m.Join()
		close(done)
	}()

	waitClosed(t, done)
	require.Equal(t, StateCreated, m.State())
}

func TestMemberInterrupt(t *testing.T) {
	t.Parallel()

	u := New("pool")
	causes := make(chan error, 1)
	m := mustNewMember(t, u, func(ctx context.Context) error {
		<-ctx.Done()
		causes <- context.Cause(ctx)
		return nil
	})
	require.NoError(t, m.Start())
	require.False(t, m.Interrupted())

	m.Interrupt()
	m.Interrupt()
	m.Join()

	require.True(t, m.Interrupted())
	require.ErrorIs(t, <-causes, ErrInterrupted)
	require.False(t, u.IsShutdown())

	// Interrupting one member leaves the union and its other members alone.
	other := mustNewMember(t, u, func(context.Context) error { return nil })
	require.False(t, other.Interrupted())
}

func TestMemberInterruptedWorkMayIgnoreCancellation(t *testing.T) {
	t.Parallel()

	u := New("pool")
	m := mustNewMember(t, u, func(context.Context) error { return nil })
	m.Interrupt()
	require.NoError(t, m.Start())
	m.Join()

	require.Equal(t, StateCompleted, m.State())
	require.NoError(t, u.Results()[0].Err)
}

func TestMemberStateString(t *testing.T) {
	t.Parallel()

	cases := map[MemberState]string{
		StateCreated:    "created",
		StateRunning:    "running",
		StateCompleted:  "completed",
		StateFailed:     "failed",
		MemberState(42): "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}

func TestPanicErrorUnwrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, (&PanicError{Value: "x"}).Unwrap())

	inner := context.DeadlineExceeded
	pe := &PanicError{Value: inner}
	require.ErrorIs(t, pe, context.DeadlineExceeded)
	require.Equal(t, "panic: context deadline exceeded", pe.Error())
}
