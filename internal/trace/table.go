// SPDX-License-Identifier: MPL-2.0

package trace

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"precipice-cli/internal/issue"
)

// Import reads a whole trace table file. A missing trailing newline is
// tolerated; a file that is empty (or whitespace only) yields an empty set.
// Any sample that fails base-10 parsing is fatal for the entire import.
func Import(path string) ([]Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.WrapResource(err, "import trace file", path).
			WithSuggestion("Check that the file exists and is readable")
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return []Trace{}, nil
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	traces := make([]Trace, 0, len(lines))
	for lineNo, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		fields := strings.Split(line, ",")

		tr := Trace{
			Name:    fields[0],
			Samples: make([]uint64, 0, len(fields)-1),
		}
		for _, field := range fields[1:] {
			sample, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return nil, issue.WrapResource(
					fmt.Errorf("line %d: parse sample %q: %w", lineNo+1, field, err),
					"import trace file", path,
				).WithSuggestion("Samples must be base-10 non-negative integers in microseconds")
			}
			tr.Samples = append(tr.Samples, sample)
		}
		traces = append(traces, tr)
	}

	return traces, nil
}

// ExportTable writes the trace set to <baseName>.csv in the row format
// described in the package docs and returns the number of bytes written.
// Names are validated so the file can round-trip through Import.
func ExportTable(baseName string, traces []Trace) (int, error) {
	var sb strings.Builder
	for _, tr := range traces {
		if err := ValidateName(tr.Name); err != nil {
			return 0, err
		}
		sb.WriteString(tr.Name)
		for _, sample := range tr.Samples {
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatUint(sample, 10))
		}
		sb.WriteByte('\n')
	}

	out := []byte(sb.String())
	if err := os.WriteFile(baseName+".csv", out, 0o644); err != nil {
		return 0, issue.WrapResource(err, "write trace table", baseName+".csv")
	}
	return len(out), nil
}

// Collect imports each file in input order, concatenates the resulting
// traces, and appends extra last if non-nil. Ordering within each file is
// preserved.
func Collect(paths []string, extra *Trace) ([]Trace, error) {
	var traces []Trace
	for _, path := range paths {
		imported, err := Import(path)
		if err != nil {
			return nil, err
		}
		traces = append(traces, imported...)
	}
	if extra != nil {
		traces = append(traces, *extra)
	}
	return traces, nil
}
