// SPDX-License-Identifier: MPL-2.0

package trace

import (
	"fmt"
	"io"
	"math"
	"os"

	"precipice-cli/internal/issue"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxBins caps the bin count so huge run counts stay readable.
const maxBins = 40

// ExportHistogram renders the trace set as one histogram page at
// <baseName>.html, one named series per trace over shared bins, and
// returns the number of bytes written. Bins span the global sample range;
// the bin count follows Sturges' rule on the largest trace.
func ExportHistogram(baseName string, traces []Trace) (int, error) {
	for _, tr := range traces {
		if err := ValidateName(tr.Name); err != nil {
			return 0, err
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Run time distribution"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "run time (µs)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "runs"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bins := sharedBins(traces)
	bar.SetXAxis(bins.labels())
	for _, tr := range traces {
		bar.AddSeries(tr.Name, bins.bucket(tr.Samples))
	}

	f, err := os.Create(baseName + ".html")
	if err != nil {
		return 0, issue.WrapResource(err, "write histogram", baseName+".html")
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	if err := bar.Render(cw); err != nil {
		return cw.n, issue.WrapResource(err, "write histogram", baseName+".html")
	}
	return cw.n, nil
}

// binning describes a fixed set of equal-width bins over [min, min+count*width).
type binning struct {
	min   uint64
	width uint64
	count int
}

// sharedBins computes a binning covering every sample of every trace, so
// all series are comparable on one axis.
func sharedBins(traces []Trace) binning {
	var (
		min, max   uint64 = math.MaxUint64, 0
		longest    int
		anySamples bool
	)
	for _, tr := range traces {
		if len(tr.Samples) > longest {
			longest = len(tr.Samples)
		}
		for _, s := range tr.Samples {
			anySamples = true
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
	}
	if !anySamples {
		return binning{min: 0, width: 1, count: 1}
	}

	// Sturges' rule on the largest series.
	count := int(math.Ceil(math.Log2(float64(longest)))) + 1
	if count < 1 {
		count = 1
	}
	if count > maxBins {
		count = maxBins
	}

	width := (max - min + uint64(count)) / uint64(count)
	if width == 0 {
		width = 1
	}
	return binning{min: min, width: width, count: count}
}

func (b binning) labels() []string {
	labels := make([]string, b.count)
	for i := range labels {
		lo := b.min + uint64(i)*b.width
		labels[i] = fmt.Sprintf("%d-%d", lo, lo+b.width-1)
	}
	return labels
}

func (b binning) bucket(samples []uint64) []opts.BarData {
	counts := make([]int, b.count)
	for _, s := range samples {
		idx := int((s - b.min) / b.width)
		if idx >= b.count {
			idx = b.count - 1
		}
		counts[idx]++
	}

	data := make([]opts.BarData, b.count)
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	return data
}

type countingWriter struct {
	w io.Writer
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += n
	return n, err
}
