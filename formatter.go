package acceptor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/runner"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// ResultFormatter is responsible for formatting and displaying a completed
// run: the per-case table, the readiness checklist and the tier banner.
type ResultFormatter interface {
	FormatResults(result *runner.SuiteResult, verdict *readiness.Verdict) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	out io.Writer
}

// NewConsoleResultFormatter creates a formatter writing to stdout.
func NewConsoleResultFormatter() *ConsoleResultFormatter {
	return &ConsoleResultFormatter{out: os.Stdout}
}

// SetOutput redirects the formatter, used by tests.
func (f *ConsoleResultFormatter) SetOutput(w io.Writer) {
	f.out = w
}

// FormatResults renders the console report. Every attempted case appears
// with its raw exit code; nothing is silently dropped.
func (f *ConsoleResultFormatter) FormatResults(result *runner.SuiteResult, verdict *readiness.Verdict) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Acceptance Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"ID", "Test", "Duration", "Exit Code", "Status", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "ID", WidthMax: 30, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Test", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Exit Code", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, res := range result.Report.Results() {
		t.AppendRow(table.Row{
			res.CaseID,
			res.DisplayName,
			formatDuration(res.Duration),
			res.Outcome.ExitCode,
			getResultString(res.Status),
			errorText(res),
		})

		// Surface failing sub-checks directly under their case.
		for _, check := range res.Checks {
			if check.Passed {
				continue
			}
			t.AppendRow(table.Row{
				"",
				fmt.Sprintf("└─ %s", check.Name),
				"",
				"",
				getResultString(types.TestStatusFail),
				"",
			})
		}
	}
	t.Render()

	fmt.Fprintf(f.out, "\nProduction Readiness Checklist:\n")
	for _, cr := range verdict.Checklist {
		fmt.Fprintf(f.out, "  %s %s\n", checkMark(cr.Satisfied), cr.Criterion.Description)
	}

	fmt.Fprintf(f.out, "\nTests Passed: %d/%d (%.1f%%)\n\n", verdict.Stats.Passed, verdict.Stats.Total, verdict.PassRate)
	fmt.Fprintln(f.out, bannerFor(verdict.Tier))
	return nil
}

func bannerFor(tier readiness.Tier) string {
	switch tier {
	case readiness.TierReady:
		return text.FgGreen.Sprint("🚀 PRODUCTION READY - All critical tests passed")
	case readiness.TierMostlyReady:
		return text.FgYellow.Sprint("⚠ MOSTLY READY - Most features working, minor issues to address")
	default:
		return text.FgRed.Sprint("❌ NOT READY - Significant issues remain")
	}
}

func checkMark(ok bool) string {
	if ok {
		return text.FgGreen.Sprint("✓")
	}
	return text.FgRed.Sprint("✗")
}

func getResultString(status types.TestStatus) string {
	if status == types.TestStatusPass {
		return text.FgGreen.Sprint("pass")
	}
	return text.FgRed.Sprint("fail")
}

// errorText condenses a failed case's captured stderr to a single line.
func errorText(res *types.TestResult) string {
	if res.Passed {
		return ""
	}
	stderr := res.Outcome.Stderr
	if stderr == "" {
		return ""
	}
	stderr, _, _ = strings.Cut(stderr, "\n")
	return stderr
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
