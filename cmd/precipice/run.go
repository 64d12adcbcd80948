// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"precipice-cli/internal/bench"
	"precipice-cli/internal/export"
	"precipice-cli/internal/stats"
	"precipice-cli/internal/trace"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	runBin        string
	runArgs       string
	runCount      int
	runNoWarmup   bool
	runShowOutput bool
	runExportType string
	runOutFile    string
	runTraceName  string
	runTraceFiles []string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Benchmark a binary and export the results",
		Long: `Benchmark a binary by running it repeatedly and export the measured
durations. By default one warmup run primes caches before measuring;
its stderr is shown, and --show-output also mirrors its stdout.

Press Enter (or send SIGINT) at any point to stop after the current
batch of runs; everything measured so far is still exported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runBenchmark(); err != nil {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return err
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runBin, "bin", "b", "", "binary to benchmark (required)")
	runCmd.Flags().StringVarP(&runArgs, "cli-args", "c", "", "arguments passed to the binary, split on single spaces")
	runCmd.Flags().IntVarP(&runCount, "runs", "r", bench.DefaultRuns, "number of measured runs")
	runCmd.Flags().BoolVarP(&runNoWarmup, "no-warmup", "w", false, "skip the warmup run")
	runCmd.Flags().BoolVarP(&runShowOutput, "show-output", "s", false, "mirror the first warmup run's stdout")
	runCmd.Flags().StringVarP(&runExportType, "export-type", "t", string(export.KindTable), "output format: table or histogram")
	runCmd.Flags().StringVarP(&runOutFile, "out-file", "f", "", "output file name without extension (default <binary>_<runs>)")
	runCmd.Flags().StringVarP(&runTraceName, "trace-name", "n", "", "trace label in the output (default equal to out-file)")
	runCmd.Flags().StringArrayVarP(&runTraceFiles, "trace", "T", nil, "prior trace file to merge into the export (repeatable)")

	_ = runCmd.MarkFlagRequired("bin")
}

func runBenchmark() error {
	kind, err := export.ParseKind(runExportType)
	if err != nil {
		return err
	}

	outFile, traceName := exportNames(runOutFile, runTraceName, runBin, runCount)
	if err := trace.ValidateName(traceName); err != nil {
		return err
	}

	warmup := 1
	if runNoWarmup {
		warmup = 0
	}

	target := bench.Target{Path: runBin, Args: splitArgs(runArgs)}
	plan := bench.Plan{Runs: runCount, Warmup: warmup, PrintInitial: runShowOutput}

	fmt.Printf("Benching %s with %q for %s runs to %s.\n",
		ValueStyle.Render(target.Path), runArgs,
		ValueStyle.Render(fmt.Sprint(runCount)), kind)
	fmt.Println(SubtitleStyle.Render("To cancel at any point, press Enter."))

	cancel := make(chan struct{})
	stopCancelWatch := watchForCancel(cancel)
	defer stopCancelWatch()

	engine := bench.NewThreadEngine(cancel)
	session, err := engine.Start(target, plan)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(runCount,
		progressbar.OptionSetDescription("benching"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var micros []uint64
	for d := range session.Stream() {
		micros = append(micros, uint64(d.Microseconds()))
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := session.Wait(); err != nil {
		return err
	}
	if len(micros) < runCount {
		fmt.Println(WarningStyle.Render(
			fmt.Sprintf("Stopped early after %d of %d runs.", len(micros), runCount)))
	}

	printSummary(micros)

	n, err := export.Export(kind, outFile, trace.Trace{Name: traceName, Samples: micros}, runTraceFiles)
	if err != nil {
		return err
	}
	log.Debug("finished exporting", "bytes", n, "file", outFile+kind.Extension())
	fmt.Printf("Wrote %s.\n", ValueStyle.Render(outFile+kind.Extension()))
	return nil
}

// printSummary prints mean ± stddev plus the min/median/max reduction.
func printSummary(micros []uint64) {
	mean, stddev, ok := stats.MeanStdDev(micros)
	if !ok {
		fmt.Println(WarningStyle.Render("No runs measured."))
		return
	}

	fmt.Printf("End Result: %s\n", SuccessStyle.Render(
		fmt.Sprintf("%v ± %v", mean.Round(time.Microsecond), stddev.Round(time.Microsecond))))

	if min, med, max, ok := stats.MinMedianMax(micros); ok {
		fmt.Printf("Min %s  Median %s  Max %s\n",
			ValueStyle.Render(microsString(min)),
			ValueStyle.Render(microsString(med)),
			ValueStyle.Render(microsString(max)))
	}
}

func microsString(us uint64) string {
	return (time.Duration(us) * time.Microsecond).String()
}

// splitArgs tokenizes the argument string on single spaces. An empty
// string yields no arguments rather than [""].
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

// exportNames resolves the output base name and trace label defaults: the
// base name falls back to the trace label when given, otherwise to
// <binary-file-name>_<runs>; the label defaults to the base name.
func exportNames(outFile, traceName, bin string, runs int) (string, string) {
	if outFile == "" {
		if traceName != "" {
			outFile = traceName
		} else {
			name := filepath.Base(bin)
			if name == "." || name == string(filepath.Separator) {
				name = "bench_results"
			}
			outFile = fmt.Sprintf("%s_%d", name, runs)
		}
	}
	if traceName == "" {
		traceName = outFile
	}
	return outFile, traceName
}

// watchForCancel closes cancel on SIGINT or when a line is read from
// stdin. The returned function releases the signal handler.
func watchForCancel(cancel chan struct{}) func() {
	var once sync.Once
	signalCancel := func() { once.Do(func() { close(cancel) }) }

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		if _, ok := <-sigCh; ok {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Stopping early"))
			signalCancel()
		}
	}()

	go func() {
		// Blocks until the user presses Enter; the goroutine leaks if they
		// never do, which is harmless for a short-lived CLI process.
		reader := bufio.NewReader(os.Stdin)
		if _, err := reader.ReadString('\n'); err == nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Stopping early"))
			signalCancel()
		}
	}()

	return func() { signal.Stop(sigCh); close(sigCh) }
}
