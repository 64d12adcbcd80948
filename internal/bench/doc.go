// SPDX-License-Identifier: MPL-2.0

// Package bench spawns a target binary repeatedly and streams the
// wall-clock duration of every measured invocation to a single consumer.
//
// Two engines implement the same contract: ThreadEngine runs the loop on a
// goroutine pinned to an OS thread and is cancelled through a one-shot
// channel; TaskEngine runs as an ordinary cooperative goroutine and is
// cancelled through a context. Cancellation is coarse grained: it is
// honored between fixed-size batches of runs, never mid-invocation, and a
// running child process is never killed.
//
// The duration stream is closed when the engine terminates; closure is the
// sole end-of-stream marker. Consumers then call Session.Wait to tell clean
// termination apart from an I/O failure.
package bench
