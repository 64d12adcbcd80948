// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"errors"
	"fmt"
)

// DefaultRuns is the run count front-ends fall back to when the user does
// not supply one.
const DefaultRuns = 1000

var (
	// ErrNoTarget is returned when a plan is started without a binary path.
	ErrNoTarget = errors.New("no target binary configured")
	// ErrBadRunCount is returned for a run count below 1.
	ErrBadRunCount = errors.New("run count must be at least 1")
	// ErrBadWarmup is returned for a negative warmup count.
	ErrBadWarmup = errors.New("warmup count must not be negative")
)

// Target names the program to measure. Path may be absolute, relative to
// the working directory captured at engine start, or a bare name resolved
// via PATH. Args are passed through verbatim.
type Target struct {
	Path string
	Args []string
}

// Plan describes one benchmarking session. Runs is the number of measured
// invocations; Warmup invocations run first and are never emitted.
// PrintInitial mirrors the target's stdout from the very first warmup
// invocation to the parent's stdout.
type Plan struct {
	Runs         int
	Warmup       int
	PrintInitial bool
}

func validate(target Target, plan Plan) error {
	if target.Path == "" {
		return ErrNoTarget
	}
	if plan.Runs < 1 {
		return fmt.Errorf("%w: got %d", ErrBadRunCount, plan.Runs)
	}
	if plan.Warmup < 0 {
		return fmt.Errorf("%w: got %d", ErrBadWarmup, plan.Warmup)
	}
	return nil
}
