// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// batchSize is the number of measured runs between cancellation checks.
// It only affects cancellation granularity: after a signal is observed at
// a batch boundary, at most one in-flight batch of durations follows.
const batchSize = 5

// Engine is the contract shared by both execution substrates.
type Engine interface {
	// Start validates the inputs and launches the benchmarking session.
	// On a validation error no session is created and nothing runs.
	Start(target Target, plan Plan) (*Session, error)
}

// Session is a live or finished benchmarking run. The duration stream is
// single-consumer and is closed when the session terminates.
type Session struct {
	stream chan time.Duration
	done   chan error

	once sync.Once
	err  error

	stdout io.Writer
	stderr io.Writer
}

func newSession(stdout, stderr io.Writer) *Session {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Session{
		// Unbuffered: the producer is rate-limited by child process
		// latency and the tight coupling keeps the post-cancellation
		// emission bound at one batch.
		stream: make(chan time.Duration),
		done:   make(chan error, 1),
		stdout: stdout,
		stderr: stderr,
	}
}

// Stream returns the receive side of the duration stream. Durations arrive
// in strict invocation order; channel closure is the end-of-stream marker.
func (s *Session) Stream() <-chan time.Duration { return s.stream }

// Wait blocks until the session has terminated and returns nil on clean
// termination (including cancellation and warmup abort) or the spawn/wait
// error that stopped it. Safe to call more than once.
func (s *Session) Wait() error {
	s.once.Do(func() { s.err = <-s.done })
	return s.err
}

// run drives the whole session on the caller's goroutine. cancelled is a
// non-blocking poll supplied by the engine; it is consulted at batch
// boundaries only.
func (s *Session) run(target Target, plan Plan, cancelled func() bool) {
	err := s.bench(target, plan, cancelled)
	s.done <- err
	close(s.stream)
}

func (s *Session) bench(target Target, plan Plan, cancelled func() bool) error {
	// Captured once so consumer-driven directory changes cannot perturb
	// later invocations. A failed lookup just leaves the child with the
	// parent's default.
	workDir, err := os.Getwd()
	if err != nil {
		workDir = ""
	}

	for i := 0; i < plan.Warmup; i++ {
		ok, err := s.warmupRun(target, workDir, plan.PrintInitial && i == 0)
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("target failed during warmup, stopping session",
				"target", target.Path, "warmup", i+1)
			return nil
		}
	}

	for remaining := plan.Runs; remaining > 0; {
		if cancelled() {
			log.Debug("cancellation observed at batch boundary",
				"emitted", plan.Runs-remaining)
			return nil
		}

		n := batchSize
		if remaining < n {
			n = remaining
		}
		for i := 0; i < n; i++ {
			elapsed, err := s.measuredRun(target, workDir)
			if err != nil {
				return err
			}
			s.stream <- elapsed
		}
		remaining -= n
	}
	return nil
}

// warmupRun executes one unmeasured invocation with captured output.
// Stderr is always mirrored to the parent; stdout only when mirrorStdout
// is set and the child produced any. ok is false for a non-success exit,
// which ends the session cleanly.
func (s *Session) warmupRun(target Target, workDir string, mirrorStdout bool) (ok bool, err error) {
	cmd := exec.Command(target.Path, target.Args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		s.stderr.Write(stderr.Bytes()) //nolint:errcheck // mirroring is best effort
	}
	if mirrorStdout && stdout.Len() > 0 {
		s.stdout.Write(stdout.Bytes()) //nolint:errcheck // mirroring is best effort
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("warmup run of %s: %w", target.Path, runErr)
	}
	return true, nil
}

// measuredRun spawns the target once and times spawn through wait. Child
// output is discarded. A non-success exit is logged but still measured;
// only spawn/wait failures abort the session.
func (s *Session) measuredRun(target Target, workDir string) (time.Duration, error) {
	cmd := exec.Command(target.Path, target.Args...)
	cmd.Dir = workDir

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			log.Warn("target exited non-zero",
				"target", target.Path, "code", exitErr.ExitCode())
			return elapsed, nil
		}
		return 0, fmt.Errorf("run %s: %w", target.Path, runErr)
	}
	return elapsed, nil
}
