// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"io"
	"runtime"
)

// ThreadEngine runs sessions on a dedicated OS thread with blocking child
// I/O. Cancellation is a one-shot channel polled without blocking; closing
// the channel (dropping the sender) is equivalent to signalling. A nil
// cancel channel makes the engine uncancellable.
type ThreadEngine struct {
	cancel <-chan struct{}

	// Stdout and Stderr receive mirrored warmup output. Nil values fall
	// back to the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

var _ Engine = (*ThreadEngine)(nil)

// NewThreadEngine creates a thread-backed engine. cancel may be nil.
func NewThreadEngine(cancel <-chan struct{}) *ThreadEngine {
	return &ThreadEngine{cancel: cancel}
}

// Start implements Engine.
func (e *ThreadEngine) Start(target Target, plan Plan) (*Session, error) {
	if err := validate(target, plan); err != nil {
		return nil, err
	}

	s := newSession(e.Stdout, e.Stderr)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		s.run(target, plan, e.cancelled)
	}()
	return s, nil
}

// cancelled is the non-blocking poll used at batch boundaries. A receive
// succeeds both for a sent signal and for a closed channel; a nil channel
// never becomes ready.
func (e *ThreadEngine) cancelled() bool {
	select {
	case <-e.cancel:
		return true
	default:
		return false
	}
}
