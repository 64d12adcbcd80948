// SPDX-License-Identifier: MPL-2.0

// Package export routes a finished run, plus any previously recorded trace
// files, to one of the trace output formats. Both front-ends go through
// this single entry point.
package export

import (
	"fmt"

	"precipice-cli/internal/trace"
)

// Kind selects the output format.
type Kind string

const (
	// KindTable writes a row-oriented <base>.csv.
	KindTable Kind = "table"
	// KindHistogram writes a histogram page at <base>.html.
	KindHistogram Kind = "histogram"
)

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTable, KindHistogram:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown export kind %q (want %q or %q)", s, KindTable, KindHistogram)
	}
}

func (k Kind) String() string { return string(k) }

// Extension returns the file extension the kind produces, with dot.
func (k Kind) Extension() string {
	if k == KindHistogram {
		return ".html"
	}
	return ".csv"
}

// Export concatenates the traces imported from priorFiles (in input order)
// with the fresh trace appended last, writes them as kind under baseName,
// and returns the number of bytes written.
func Export(kind Kind, baseName string, fresh trace.Trace, priorFiles []string) (int, error) {
	traces, err := trace.Collect(priorFiles, &fresh)
	if err != nil {
		return 0, err
	}
	return writeAs(kind, baseName, traces)
}

// ExportSet writes an already-assembled trace set, used by the exporter
// front-end where there is no fresh run.
func ExportSet(kind Kind, baseName string, priorFiles []string) (int, error) {
	traces, err := trace.Collect(priorFiles, nil)
	if err != nil {
		return 0, err
	}
	return writeAs(kind, baseName, traces)
}

func writeAs(kind Kind, baseName string, traces []trace.Trace) (int, error) {
	switch kind {
	case KindHistogram:
		return trace.ExportHistogram(baseName, traces)
	case KindTable:
		return trace.ExportTable(baseName, traces)
	default:
		return 0, fmt.Errorf("unknown export kind %q", kind)
	}
}
