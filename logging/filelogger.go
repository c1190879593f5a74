// Package logging persists per-run artifacts: the captured output of each
// test case and a plain-text run summary.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/types"
)

const (
	RunDirectoryPrefix = "testrun-" // Standardized prefix for run directories
	SummaryFilename    = "summary.log"
)

// FileLogger writes one output file per test case plus a run summary.
type FileLogger struct {
	baseDir string
	runID   string
	logDir  string
	mu      sync.Mutex
	log     log.Logger
}

// NewFileLogger creates the run directory and returns a logger bound to it.
func NewFileLogger(baseDir string, runID string, logger log.Logger) (*FileLogger, error) {
	if logger == nil {
		logger = log.Root()
	}
	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	return &FileLogger{
		baseDir: baseDir,
		runID:   runID,
		logDir:  logDir,
		log:     logger,
	}, nil
}

// LogDir returns the directory holding this run's artifacts.
func (l *FileLogger) LogDir() string {
	return l.logDir
}

// Consume writes the captured output of one test result to its own file.
func (l *FileLogger) Consume(result *types.TestResult) error {
	if result == nil {
		return fmt.Errorf("nil test result")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Test: %s (%s)\n", result.DisplayName, result.CaseID)
	fmt.Fprintf(&b, "Status: %s\n", result.Status)
	fmt.Fprintf(&b, "Exit code: %d\n", result.Outcome.ExitCode)
	fmt.Fprintf(&b, "Duration: %s\n", result.Duration)
	for _, check := range result.Checks {
		fmt.Fprintf(&b, "Check: %s=%t\n", check.Name, check.Passed)
	}
	b.WriteString("\n=== STDOUT ===\n")
	b.WriteString(result.Outcome.Stdout)
	b.WriteString("\n=== STDERR ===\n")
	b.WriteString(result.Outcome.Stderr)
	b.WriteString("\n")

	path := filepath.Join(l.logDir, sanitizeFilename(result.CaseID)+".log")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write test log %s: %w", path, err)
	}
	return nil
}

// Complete writes the run summary after all results have been consumed.
func (l *FileLogger) Complete(report *types.SuiteReport, verdict *readiness.Verdict) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n\n", l.runID)

	for _, res := range report.Results() {
		marker := "FAIL"
		if res.Passed {
			marker = "PASS"
		}
		fmt.Fprintf(&b, "%s - %s (exit code: %d)\n", marker, res.DisplayName, res.Outcome.ExitCode)
	}

	b.WriteString("\nReadiness checklist:\n")
	for _, cr := range verdict.Checklist {
		marker := "FAIL"
		if cr.Satisfied {
			marker = "PASS"
		}
		fmt.Fprintf(&b, "%s - %s\n", marker, cr.Criterion.Description)
	}

	fmt.Fprintf(&b, "\nTests passed: %d/%d (%.1f%%)\n", verdict.Stats.Passed, verdict.Stats.Total, verdict.PassRate)
	fmt.Fprintf(&b, "Verdict: %s\n", verdict.Tier)

	path := filepath.Join(l.logDir, SummaryFilename)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	l.log.Info("Run summary written", "path", path)
	return nil
}

// sanitizeFilename keeps artifact names filesystem-safe.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return replacer.Replace(name)
}
