// Package report renders run and ensemble summaries for the terminal.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/kinematics"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/sim"
	"github.com/san-kum/quadsim/internal/storage"
)

func status(halted bool) string {
	if halted {
		return StatusHalted.Render("HALTED")
	}
	return StatusOK.Render("OK")
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, MetricLabel.Render(label), MetricValue.Render(value))
}

func metricRows(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, row(name, fmt.Sprintf("%.6f", m[name])))
	}
	return rows
}

// Run renders one finished run.
func Run(runID string, result *dynamo.Result, elapsed time.Duration) string {
	lines := []string{
		Title.Render("quadsim run") + "  " + status(result.Halted),
		row("run id", runID),
		row("steps", fmt.Sprintf("%d", result.StepsTaken)),
		row("wall time", elapsed.Round(time.Microsecond).String()),
	}

	if n := len(result.Snapshots); n > 0 {
		last := result.Snapshots[n-1]
		euler := kinematics.Vec3Rad2Deg(last.EulerAngles)
		lines = append(lines,
			row("final time", fmt.Sprintf("%.3fs", last.Time)),
			row("final pos", last.Position.String()),
			row("final att", euler.String()+" deg"),
		)
	}
	for _, err := range result.Errors {
		lines = append(lines, row("error", err.Error()))
	}

	if len(result.Metrics) > 0 {
		lines = append(lines, "", HeaderStyle.Render("metrics"))
		lines = append(lines, metricRows(result.Metrics)...)
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// Ensemble renders the aggregate of an ensemble.
func Ensemble(summary sim.Summary, elapsed time.Duration) string {
	lines := []string{
		Title.Render("quadsim ensemble"),
		row("runs", fmt.Sprintf("%d", summary.Runs)),
		row("halted", fmt.Sprintf("%d", summary.Halted)),
		row("wall time", elapsed.Round(time.Millisecond).String()),
	}
	if len(summary.Mean) > 0 {
		lines = append(lines, "", HeaderStyle.Render("metrics (mean ± std)"))
		for _, name := range summary.MetricNames() {
			lines = append(lines, row(name, fmt.Sprintf("%.6f ± %.6f", summary.Mean[name], summary.StdDev[name])))
		}
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// Runs renders the stored run list.
func Runs(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no runs found")
	}

	header := fmt.Sprintf("%-36s  %-12s  %-19s  %8s  %7s  %s", "ID", "NAME", "TIME", "DURATION", "DT", "STATUS")
	lines := []string{HeaderStyle.Render(header)}
	for _, run := range runs {
		lines = append(lines, fmt.Sprintf("%-36s  %-12s  %-19s  %7.2fs  %6.4fs  %s",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			status(run.Halted),
		))
	}
	return strings.Join(lines, "\n")
}

// Presets renders preset names with their one-line descriptions.
func Presets(names []string, describe func(string) string) string {
	lines := []string{Title.Render("presets")}
	for _, name := range names {
		lines = append(lines, row(name, describe(name)))
	}
	return strings.Join(lines, "\n")
}

// Trials renders the best n trials of a gain search.
func Trials(trials []optim.Trial, metric string, n int, elapsed time.Duration) string {
	lines := []string{
		Title.Render("gain search") + "  " + Subtle.Render(fmt.Sprintf("%d trials in %s", len(trials), elapsed.Round(time.Millisecond))),
		HeaderStyle.Render(fmt.Sprintf("%8s  %8s  %s", "KP", "KD", strings.ToUpper(metric))),
	}
	for i, t := range trials {
		if i >= n {
			break
		}
		score := fmt.Sprintf("%.6f", t.Score)
		if t.Err != nil {
			score = StatusHalted.Render(t.Err.Error())
		} else if math.IsInf(t.Score, 1) {
			score = StatusHalted.Render("HALTED")
		}
		lines = append(lines, fmt.Sprintf("%8.3f  %8.3f  %s", t.Params["kp"], t.Params["kd"], score))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}
