// Package evrt is a small, single-threaded reactor-style async runtime.
//
// # Architecture
//
// A [Loop] owns a readiness [Backend] (portable poll(2) or Linux epoll),
// a timer min-heap, a local task queue, and a cross-thread mailbox. User
// code runs as [Future] values polled to completion by the loop's
// executor; a future suspends by registering interest with the loop (a
// timer via [Sleep], an [AsyncFd] readiness wait, a [JoinHandle], an
// [AsyncQueue]) and is woken through a [Waker] that re-enqueues it onto
// the loop from any goroutine.
//
// # Platform support
//
// Two readiness backends are provided: [BackendPoll], a portable
// level-triggered backend built on poll(2), and [BackendEpoll], a
// Linux-only backend built on epoll(7). Requesting [BackendEpoll] on a
// non-Linux target fails at [NewLoop] time.
//
// # Thread safety
//
// All task polling and all readiness dispatch happen on the single
// goroutine that calls [Loop.Run]. [Handle.Post] is the only supported
// way to reach the loop from another goroutine; a [Handle] is cheap to
// clone and safe to share.
//
// # Cancellation
//
// Cancellation is cooperative only: [JoinHandle.Abort] flags a task for
// drop at its next poll visit. There is no preemption and no forced
// interruption of a future mid-poll.
package evrt
