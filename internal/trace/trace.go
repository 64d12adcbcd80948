// SPDX-License-Identifier: MPL-2.0

// Package trace reads and writes named series of microsecond run times.
//
// The on-disk table format is row oriented, one trace per row:
//
//	<name>,<sample1>,<sample2>,...,<sampleK>\n
//
// There is no header row, names are taken verbatim (never quoted), and
// rows may carry different sample counts. The same trace sets can also be
// rendered as a histogram HTML page.
package trace

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidName is the sentinel wrapped by name validation failures.
var ErrInvalidName = errors.New("invalid trace name")

// Trace is a named series of samples in microseconds.
type Trace struct {
	Name    string
	Samples []uint64
}

// New builds a trace from measured durations, converting to microseconds.
func New(name string, runs []time.Duration) Trace {
	samples := make([]uint64, len(runs))
	for i, d := range runs {
		if d > 0 {
			samples[i] = uint64(d.Microseconds())
		}
	}
	return Trace{Name: name, Samples: samples}
}

// ValidateName checks that a trace name can round-trip through the table
// format: non-empty, no comma, no newline. Names failing this are rejected
// at write time rather than silently corrupted.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.ContainsAny(name, ",\n"):
		return fmt.Errorf("%w: %q contains a comma or newline", ErrInvalidName, name)
	default:
		return nil
	}
}
