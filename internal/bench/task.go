// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"context"
	"io"
)

// TaskEngine runs sessions as an ordinary cooperative goroutine, suited to
// front-ends that already live inside an event loop. Cancellation comes
// from the supplied context and is observed at the same batch boundaries
// as the thread engine.
type TaskEngine struct {
	ctx context.Context

	// Stdout and Stderr receive mirrored warmup output. Nil values fall
	// back to the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

var _ Engine = (*TaskEngine)(nil)

// NewTaskEngine creates a task-backed engine. A nil context makes the
// engine uncancellable.
func NewTaskEngine(ctx context.Context) *TaskEngine {
	if ctx == nil {
		ctx = context.Background()
	}
	return &TaskEngine{ctx: ctx}
}

// Start implements Engine.
func (e *TaskEngine) Start(target Target, plan Plan) (*Session, error) {
	if err := validate(target, plan); err != nil {
		return nil, err
	}

	s := newSession(e.Stdout, e.Stderr)
	go s.run(target, plan, func() bool { return e.ctx.Err() != nil })
	return s, nil
}
