// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"precipice-cli/internal/bench"
	"precipice-cli/internal/config"
	"precipice-cli/internal/export"
	"precipice-cli/internal/stats"
	"precipice-cli/internal/trace"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive benchmarking session",
	Long: `An interactive terminal session for benchmarking. The setup form is
seeded from (and saved back to) your preferences, runs stream in live
with a progress bar, and finished sessions can be exported to a CSV
table or a histogram page without leaving the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
			prefs = config.DefaultConfig()
		}

		p := tea.NewProgram(newSessionModel(prefs), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
	SilenceUsage: true,
}

type sessionPhase int

const (
	phaseSetup sessionPhase = iota
	phaseRunning
	phaseDone
)

// Field order in the setup form.
const (
	fieldTarget = iota
	fieldArgs
	fieldRuns
	fieldCount
)

type (
	// runMsg carries one measured duration off the engine stream.
	runMsg time.Duration
	// streamClosedMsg signals end of stream; the session can be awaited.
	streamClosedMsg struct{}
	// exportedMsg reports a finished export action.
	exportedMsg struct {
		file string
		err  error
	}
)

// sessionModel is the bubbletea model for the whole interactive session.
type sessionModel struct {
	phase sessionPhase
	prefs *config.Config

	// Setup form.
	inputs  [fieldCount]textinput.Model
	focus   int
	warmup  bool
	errText string

	// Live run.
	cancelRun context.CancelFunc
	session   *bench.Session
	bar       progress.Model
	total     int
	runs      []time.Duration
	stopped   bool

	// Finished session.
	runErr       error
	exportStatus string
}

func newSessionModel(prefs *config.Config) sessionModel {
	m := sessionModel{
		prefs:  prefs,
		warmup: prefs.Warmup,
		bar:    progress.New(progress.WithDefaultGradient()),
	}

	m.inputs[fieldTarget] = textinput.New()
	m.inputs[fieldTarget].Placeholder = "./path/to/binary"
	m.inputs[fieldTarget].SetValue(prefs.TargetPath)
	m.inputs[fieldTarget].Focus()

	m.inputs[fieldArgs] = textinput.New()
	m.inputs[fieldArgs].Placeholder = "arguments (space separated)"
	m.inputs[fieldArgs].SetValue(strings.Join(prefs.TargetArgs, " "))

	m.inputs[fieldRuns] = textinput.New()
	m.inputs[fieldRuns].Placeholder = strconv.Itoa(bench.DefaultRuns)
	m.inputs[fieldRuns].SetValue(strconv.Itoa(prefs.Runs))

	return m
}

func (m sessionModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case runMsg:
		m.runs = append(m.runs, time.Duration(msg))
		return m, waitForRun(m.session.Stream())

	case streamClosedMsg:
		m.runErr = m.session.Wait()
		m.phase = phaseDone
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.exportStatus = ErrorStyle.Render("Export failed: ") + formatErrorForDisplay(msg.err, verbose)
		} else {
			m.exportStatus = SuccessStyle.Render("Wrote " + msg.file)
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m sessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.cancelRun != nil {
			m.cancelRun()
		}
		return m, tea.Quit
	}

	switch m.phase {
	case phaseSetup:
		switch msg.Type {
		case tea.KeyTab, tea.KeyDown:
			return m.moveFocus(1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return m.moveFocus(-1), nil
		case tea.KeyCtrlW:
			m.warmup = !m.warmup
			return m, nil
		case tea.KeyEnter:
			return m.startRun()
		}
		return m.updateInputs(msg)

	case phaseRunning:
		if msg.Type == tea.KeyEsc {
			m.cancelRun()
			m.stopped = true
		}
		return m, nil

	case phaseDone:
		switch msg.String() {
		case "c":
			return m, m.exportCmd(export.KindTable)
		case "h":
			return m, m.exportCmd(export.KindHistogram)
		case "r":
			fresh := newSessionModel(m.prefs)
			return fresh, fresh.Init()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m sessionModel) moveFocus(delta int) sessionModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	return m
}

func (m sessionModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != phaseSetup {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// startRun validates the form, saves preferences, and launches a
// task-mode engine driven by the event loop.
func (m sessionModel) startRun() (tea.Model, tea.Cmd) {
	targetPath := strings.TrimSpace(m.inputs[fieldTarget].Value())
	args := splitArgs(strings.TrimSpace(m.inputs[fieldArgs].Value()))

	runs, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldRuns].Value()))
	if err != nil || runs < 1 {
		m.errText = "Run count must be a positive integer."
		return m, nil
	}

	warmup := 0
	if m.warmup {
		warmup = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	engine := bench.NewTaskEngine(ctx)
	session, err := engine.Start(
		bench.Target{Path: targetPath, Args: args},
		bench.Plan{Runs: runs, Warmup: warmup},
	)
	if err != nil {
		cancel()
		m.errText = err.Error()
		return m, nil
	}

	m.prefs.TargetPath = targetPath
	m.prefs.TargetArgs = args
	m.prefs.Runs = runs
	m.prefs.Warmup = m.warmup
	if err := config.Save(m.prefs); err != nil {
		log.Warn("could not save preferences", "err", err)
	}

	m.phase = phaseRunning
	m.cancelRun = cancel
	m.session = session
	m.total = runs
	m.runs = nil
	m.stopped = false
	m.errText = ""
	m.exportStatus = ""
	return m, waitForRun(session.Stream())
}

// waitForRun blocks (inside the command goroutine) until the next
// duration arrives or the stream closes.
func waitForRun(stream <-chan time.Duration) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-stream
		if !ok {
			return streamClosedMsg{}
		}
		return runMsg(d)
	}
}

func (m sessionModel) exportCmd(kind export.Kind) tea.Cmd {
	base, label := exportNames("", "", m.prefs.TargetPath, m.total)
	fresh := trace.New(label, m.runs)
	priors := m.prefs.TraceFiles

	return func() tea.Msg {
		n, err := export.Export(kind, base, fresh, priors)
		if err != nil {
			return exportedMsg{err: err}
		}
		log.Debug("finished exporting", "bytes", n)
		return exportedMsg{file: base + kind.Extension()}
	}
}

func (m sessionModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("precipice"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseSetup:
		b.WriteString(SubtitleStyle.Render("Preparing to bench") + "\n\n")
		labels := [fieldCount]string{"Binary", "Arguments", "Runs"}
		for i, in := range m.inputs {
			b.WriteString(fmt.Sprintf("%-10s %s\n", labels[i], in.View()))
		}
		warmupState := "on"
		if !m.warmup {
			warmupState = "off"
		}
		b.WriteString(fmt.Sprintf("%-10s %s\n", "Warmup", ValueStyle.Render(warmupState)))
		if m.errText != "" {
			b.WriteString("\n" + ErrorStyle.Render(m.errText) + "\n")
		}
		b.WriteString("\n" + SubtitleStyle.Render("tab: next field • ctrl+w: toggle warmup • enter: go • ctrl+c: quit"))

	case phaseRunning:
		b.WriteString(SubtitleStyle.Render("Running!") + "\n\n")
		b.WriteString(m.bar.ViewAs(float64(len(m.runs)) / float64(m.total)))
		b.WriteString(fmt.Sprintf("\n\n%d of %d runs", len(m.runs), m.total))
		if m.stopped {
			b.WriteString("  " + WarningStyle.Render("(stopping after this batch)"))
		}
		b.WriteString("\n\n" + m.recentRuns())
		b.WriteString("\n" + SubtitleStyle.Render("esc: stop early • ctrl+c: quit"))

	case phaseDone:
		if m.runErr != nil {
			b.WriteString(ErrorStyle.Render("Benchmark failed: ") + formatErrorForDisplay(m.runErr, verbose) + "\n\n")
		} else if len(m.runs) < m.total {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Stopped early: %d of %d runs.", len(m.runs), m.total)) + "\n\n")
		} else {
			b.WriteString(SuccessStyle.Render("All runs finished!") + "\n\n")
		}
		b.WriteString(m.summary())
		if m.exportStatus != "" {
			b.WriteString("\n" + m.exportStatus + "\n")
		}
		b.WriteString("\n" + SubtitleStyle.Render("c: export CSV • h: export histogram • r: again • q: quit"))
	}

	return b.String()
}

// recentRuns renders the tail of the live feed.
func (m sessionModel) recentRuns() string {
	const show = 5
	start := len(m.runs) - show
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for i, d := range m.runs[start:] {
		b.WriteString(fmt.Sprintf("Run %d took %v.\n", start+i+1, d))
	}
	return b.String()
}

func (m sessionModel) summary() string {
	micros := make([]uint64, len(m.runs))
	for i, d := range m.runs {
		micros[i] = uint64(d.Microseconds())
	}

	mean, stddev, ok := stats.MeanStdDev(micros)
	if !ok {
		return WarningStyle.Render("No runs measured.") + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Mean:   %s ± %s\n",
		ValueStyle.Render(mean.Round(time.Microsecond).String()),
		ValueStyle.Render(stddev.Round(time.Microsecond).String())))
	if min, med, max, ok := stats.MinMedianMax(micros); ok {
		b.WriteString(fmt.Sprintf("Min:    %s\nMedian: %s\nMax:    %s\n",
			ValueStyle.Render(microsString(min)),
			ValueStyle.Render(microsString(med)),
			ValueStyle.Render(microsString(max))))
	}
	return b.String()
}
