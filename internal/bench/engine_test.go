// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

// shTarget wraps a shell snippet as a benchmark target.
func shTarget(t *testing.T, script string) Target {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	return Target{Path: "sh", Args: []string{"-c", script}}
}

// drain reads the stream until closure and returns every duration.
func drain(s *Session) []time.Duration {
	var runs []time.Duration
	for d := range s.Stream() {
		runs = append(runs, d)
	}
	return runs
}

// engines returns both substrates so shared behavior is tested against each.
func engines() map[string]Engine {
	return map[string]Engine{
		"thread": NewThreadEngine(nil),
		"task":   NewTaskEngine(context.Background()),
	}
}

func TestCountInvariant(t *testing.T) {
	for name, eng := range engines() {
		for _, warmup := range []int{0, 3} {
			t.Run(name, func(t *testing.T) {
				s, err := eng.Start(shTarget(t, "exit 0"), Plan{Runs: 5, Warmup: warmup})
				if err != nil {
					t.Fatalf("start: %v", err)
				}
				runs := drain(s)
				if len(runs) != 5 {
					t.Errorf("warmup=%d: expected 5 durations, got %d", warmup, len(runs))
				}
				if err := s.Wait(); err != nil {
					t.Errorf("expected clean termination, got %v", err)
				}
			})
		}
	}
}

func TestSingleRun(t *testing.T) {
	for _, warmup := range []int{0, 1} {
		eng := NewThreadEngine(nil)
		s, err := eng.Start(shTarget(t, "exit 0"), Plan{Runs: 1, Warmup: warmup})
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		runs := drain(s)
		if len(runs) != 1 {
			t.Errorf("warmup=%d: expected exactly 1 duration, got %d", warmup, len(runs))
		}
		if err := s.Wait(); err != nil {
			t.Errorf("expected clean termination, got %v", err)
		}
	}
}

func TestDurationsArePositive(t *testing.T) {
	eng := NewTaskEngine(context.Background())
	s, err := eng.Start(shTarget(t, "exit 0"), Plan{Runs: 3})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, d := range drain(s) {
		if d <= 0 {
			t.Errorf("expected positive duration, got %v", d)
		}
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		plan    Plan
		wantErr error
	}{
		{"no target", Target{}, Plan{Runs: 5}, ErrNoTarget},
		{"zero runs", Target{Path: "true"}, Plan{Runs: 0}, ErrBadRunCount},
		{"negative runs", Target{Path: "true"}, Plan{Runs: -3}, ErrBadRunCount},
		{"negative warmup", Target{Path: "true"}, Plan{Runs: 1, Warmup: -1}, ErrBadWarmup},
	}

	for name, eng := range engines() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				s, err := eng.Start(tt.target, tt.plan)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if s != nil {
					t.Error("expected no session on validation failure")
				}
			})
		}
	}
}

func TestMeasuredNonZeroExitContinues(t *testing.T) {
	eng := NewThreadEngine(nil)
	s, err := eng.Start(shTarget(t, "exit 1"), Plan{Runs: 2})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	runs := drain(s)
	if len(runs) != 2 {
		t.Errorf("expected 2 durations despite non-zero exits, got %d", len(runs))
	}
	if err := s.Wait(); err != nil {
		t.Errorf("expected clean termination, got %v", err)
	}
}

func TestWarmupFailureStopsSession(t *testing.T) {
	for name, eng := range engines() {
		t.Run(name, func(t *testing.T) {
			s, err := eng.Start(shTarget(t, "exit 1"), Plan{Runs: 5, Warmup: 1})
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			runs := drain(s)
			if len(runs) != 0 {
				t.Errorf("expected 0 durations after warmup failure, got %d", len(runs))
			}
			// A failed warmup is a clean termination, not an error.
			if err := s.Wait(); err != nil {
				t.Errorf("expected success, got %v", err)
			}
		})
	}
}

func TestSpawnFailure(t *testing.T) {
	eng := NewThreadEngine(nil)
	s, err := eng.Start(Target{Path: "/definitely/not/a/binary"}, Plan{Runs: 3})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	runs := drain(s)
	if len(runs) != 0 {
		t.Errorf("expected no durations, got %d", len(runs))
	}
	if err := s.Wait(); err == nil {
		t.Error("expected spawn failure to surface via Wait")
	}
}

func TestWaitIsRepeatable(t *testing.T) {
	eng := NewTaskEngine(context.Background())
	s, err := eng.Start(Target{Path: "/definitely/not/a/binary"}, Plan{Runs: 1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(s)
	first := s.Wait()
	second := s.Wait()
	if first == nil || second == nil {
		t.Fatal("expected error from both calls")
	}
	if first.Error() != second.Error() {
		t.Errorf("expected the same result, got %v and %v", first, second)
	}
}

func TestThreadCancellation(t *testing.T) {
	cancel := make(chan struct{})
	eng := NewThreadEngine(cancel)
	s, err := eng.Start(shTarget(t, "sleep 0.01"), Plan{Runs: 200})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	count := 0
	for range s.Stream() {
		count++
		if count == 10 {
			// Dropping the sender counts as a signal; close instead of send.
			close(cancel)
			break
		}
	}
	for range s.Stream() {
		count++
	}

	if count < 10 || count > 10+batchSize {
		t.Errorf("expected count in [10, %d], got %d", 10+batchSize, count)
	}
	if err := s.Wait(); err != nil {
		t.Errorf("cancellation must terminate cleanly, got %v", err)
	}
}

func TestTaskCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := NewTaskEngine(ctx)
	s, err := eng.Start(shTarget(t, "sleep 0.01"), Plan{Runs: 200})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	count := 0
	for range s.Stream() {
		count++
		if count == 10 {
			cancel()
			break
		}
	}
	for range s.Stream() {
		count++
	}

	if count < 10 || count > 10+batchSize {
		t.Errorf("expected count in [10, %d], got %d", 10+batchSize, count)
	}
	if err := s.Wait(); err != nil {
		t.Errorf("cancellation must terminate cleanly, got %v", err)
	}
}

func TestCancelledBeforeStart(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)

	eng := NewThreadEngine(cancel)
	s, err := eng.Start(shTarget(t, "exit 0"), Plan{Runs: 50})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if runs := drain(s); len(runs) != 0 {
		t.Errorf("expected 0 durations when cancelled up front, got %d", len(runs))
	}
	if err := s.Wait(); err != nil {
		t.Errorf("expected clean termination, got %v", err)
	}
}

func TestWarmupMirroring(t *testing.T) {
	var stdout, stderr bytes.Buffer
	eng := NewThreadEngine(nil)
	eng.Stdout = &stdout
	eng.Stderr = &stderr

	s, err := eng.Start(
		shTarget(t, "echo hello; echo oops >&2"),
		Plan{Runs: 1, Warmup: 2, PrintInitial: true},
	)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if runs := drain(s); len(runs) != 1 {
		t.Errorf("expected 1 duration, got %d", len(runs))
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	// Stdout only from the very first warmup, stderr from every warmup.
	if got := stdout.String(); got != "hello\n" {
		t.Errorf("expected stdout mirrored exactly once, got %q", got)
	}
	if got := stderr.String(); got != "oops\noops\n" {
		t.Errorf("expected stderr mirrored for each warmup, got %q", got)
	}
}

func TestWarmupStdoutSuppressedByDefault(t *testing.T) {
	var stdout, stderr bytes.Buffer
	eng := NewTaskEngine(context.Background())
	eng.Stdout = &stdout
	eng.Stderr = &stderr

	s, err := eng.Start(
		shTarget(t, "echo hello; echo oops >&2"),
		Plan{Runs: 1, Warmup: 1},
	)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(s)
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if stdout.Len() != 0 {
		t.Errorf("expected no stdout mirroring without PrintInitial, got %q", stdout.String())
	}
	if stderr.String() != "oops\n" {
		t.Errorf("expected stderr mirrored during warmup, got %q", stderr.String())
	}
}

func TestMeasuredOutputDiscarded(t *testing.T) {
	var stdout, stderr bytes.Buffer
	eng := NewThreadEngine(nil)
	eng.Stdout = &stdout
	eng.Stderr = &stderr

	s, err := eng.Start(
		shTarget(t, "echo noisy; echo noisier >&2"),
		Plan{Runs: 3, PrintInitial: true},
	)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(s)
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("measured runs must not mirror output, got stdout=%q stderr=%q",
			stdout.String(), stderr.String())
	}
}
