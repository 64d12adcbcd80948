// SPDX-License-Identifier: MPL-2.0

package trace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSharedBins(t *testing.T) {
	traces := []Trace{
		{Name: "a", Samples: []uint64{100, 200, 300, 400}},
		{Name: "b", Samples: []uint64{150, 250}},
	}

	b := sharedBins(traces)
	if b.min != 100 {
		t.Errorf("expected min 100, got %d", b.min)
	}
	if b.count < 1 || b.count > maxBins {
		t.Errorf("bin count %d out of range", b.count)
	}
	// The last bin must cover the global max.
	if b.min+uint64(b.count)*b.width <= 400 {
		t.Errorf("bins [%d, %d) do not cover max sample 400",
			b.min, b.min+uint64(b.count)*b.width)
	}
}

func TestSharedBinsUniformSamples(t *testing.T) {
	b := sharedBins([]Trace{{Name: "flat", Samples: []uint64{7, 7, 7}}})
	if b.width == 0 {
		t.Error("bin width must never be zero")
	}

	data := b.bucket([]uint64{7, 7, 7})
	total := 0
	for _, d := range data {
		total += d.Value.(int)
	}
	if total != 3 {
		t.Errorf("expected all 3 samples bucketed, got %d", total)
	}
}

func TestBucketCountsEverySample(t *testing.T) {
	traces := []Trace{{Name: "a", Samples: []uint64{1, 5, 9, 13, 500, 9001}}}
	b := sharedBins(traces)

	total := 0
	for _, d := range b.bucket(traces[0].Samples) {
		total += d.Value.(int)
	}
	if total != len(traces[0].Samples) {
		t.Errorf("expected %d samples across bins, got %d", len(traces[0].Samples), total)
	}
}

func TestExportHistogram(t *testing.T) {
	base := filepath.Join(t.TempDir(), "hist")
	traces := []Trace{
		{Name: "fast", Samples: []uint64{120, 130, 125, 118}},
		{Name: "slow", Samples: []uint64{9001, 9100, 8950}},
	}

	n, err := ExportHistogram(base, traces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n <= 0 {
		t.Errorf("expected positive byte count, got %d", n)
	}

	data, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(data) != n {
		t.Errorf("reported %d bytes but file has %d", n, len(data))
	}
	for _, name := range []string{"fast", "slow"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("expected series %q in histogram page", name)
		}
	}
}

func TestExportHistogramRejectsBadNames(t *testing.T) {
	base := filepath.Join(t.TempDir(), "hist")
	_, err := ExportHistogram(base, []Trace{{Name: "a,b", Samples: []uint64{1}}})
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}
