// Package union provides a named group of goroutines with group-level
// lifecycle control.
//
// A Union builds members, counts them, interrupts them and waits for them:
//   - create members with NewMember; each is named "<union>-worker-<n>"
//   - start them with Member.Start when the caller decides
//   - stop new creations and interrupt members with Shutdown
//   - wait for registered members with AwaitTermination
//   - read outcomes in termination order with Results
//
// Semantics:
//   - NewMember returns an error matching ErrShutdown after Shutdown
//   - TotalSize counts accepted creations; ActiveSize counts running members
//   - interruption is cooperative: work receives a context that is cancelled
//     by Shutdown or Member.Interrupt, and may ignore it
//   - a member cancelled before Start still sees a cancelled context
//   - a returned error or a panic is recorded in the member's Result and is
//     never propagated to other goroutines
//   - AwaitTermination waits only for members registered when it is called
//   - IsFinished is IsShutdown() && ActiveSize() == 0 at the time of the call
//
// Options:
//   - WithLogger: zap logger for lifecycle events (no-op by default)
//   - WithMetrics: Prometheus collectors built with NewMetrics
//   - WithNameFormat: member naming format
package union
